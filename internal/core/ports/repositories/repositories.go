package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	ReceiptRepo      ReceiptRepositoryFacade
	ClientRepo       ClientRepositoryFacade
	UserRepo         UserRepositoryFacade
	FirmRepo         FirmRepositoryFacade
	SubscriptionRepo SubscriptionRepositoryFacade
	PreferenceRepo   KeyValueRepository
	ChangeStream     ChangeStreamSource
}
