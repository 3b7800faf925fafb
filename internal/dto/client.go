package dto

import "github.com/finvisor/finvisor_app/internal/core/domain"

// CreateClientRequest defines the data needed to register a client.
type CreateClientRequest struct {
	Name         string  `json:"name" binding:"required"`
	ContactEmail *string `json:"contactEmail" binding:"omitempty,email"`
	VATNumber    *string `json:"vatNumber"`
}

// UpdateClientRequest defines the data allowed for updating a client.
type UpdateClientRequest struct {
	Name         *string `json:"name"`
	ContactEmail *string `json:"contactEmail" binding:"omitempty,email"`
	VATNumber    *string `json:"vatNumber"`
}

// ClientResponse is the API shape of a client.
type ClientResponse struct {
	ClientID     string  `json:"clientID"`
	Name         string  `json:"name"`
	ContactEmail *string `json:"contactEmail"`
	VATNumber    *string `json:"vatNumber"`
}

// ToClientResponse converts a domain client.
func ToClientResponse(c *domain.Client) ClientResponse {
	return ClientResponse{
		ClientID:     c.ClientID,
		Name:         c.Name,
		ContactEmail: c.ContactEmail,
		VATNumber:    c.VATNumber,
	}
}

// ListClientsParams defines query parameters for listing clients.
type ListClientsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListClientsResponse wraps the list of clients.
type ListClientsResponse struct {
	Clients []ClientResponse `json:"clients"`
}

// ToListClientsResponse converts a slice of domain clients.
func ToListClientsResponse(clients []domain.Client) ListClientsResponse {
	out := make([]ClientResponse, len(clients))
	for i := range clients {
		out[i] = ToClientResponse(&clients[i])
	}
	return ListClientsResponse{Clients: out}
}
