package services_test

import (
	"context"
	"time"

	"github.com/finvisor/finvisor_app/internal/apperrors"
	"github.com/finvisor/finvisor_app/internal/core/domain"
)

// Hand-rolled fakes shared by the service tests. Behavior is overridden per
// test through the Fn fields; unset functions return zero values.

type fakeReceiptRepo struct {
	ListReceiptsFn   func(ctx context.Context, firmID string, filter domain.ReceiptFilter, limit int) ([]domain.Receipt, error)
	FindReceiptFn    func(ctx context.Context, firmID string, receiptID int64) (*domain.Receipt, error)
	CreateReceiptFn  func(ctx context.Context, receipt domain.Receipt) (*domain.Receipt, error)
	UpdateFieldsFn   func(ctx context.Context, receipt domain.Receipt) error
	CompleteFn       func(ctx context.Context, firmID string, receiptID int64, processedBy *string) (*domain.Receipt, error)
	FailFn           func(ctx context.Context, firmID string, receiptID int64) error
	DeleteFn         func(ctx context.Context, firmID string, receiptID int64) error
}

func (f *fakeReceiptRepo) ListReceipts(ctx context.Context, firmID string, filter domain.ReceiptFilter, limit int) ([]domain.Receipt, error) {
	if f.ListReceiptsFn != nil {
		return f.ListReceiptsFn(ctx, firmID, filter, limit)
	}
	return nil, nil
}

func (f *fakeReceiptRepo) FindReceiptByID(ctx context.Context, firmID string, receiptID int64) (*domain.Receipt, error) {
	if f.FindReceiptFn != nil {
		return f.FindReceiptFn(ctx, firmID, receiptID)
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeReceiptRepo) CreateReceipt(ctx context.Context, receipt domain.Receipt) (*domain.Receipt, error) {
	if f.CreateReceiptFn != nil {
		return f.CreateReceiptFn(ctx, receipt)
	}
	receipt.ID = 1
	return &receipt, nil
}

func (f *fakeReceiptRepo) UpdateReceiptFields(ctx context.Context, receipt domain.Receipt) error {
	if f.UpdateFieldsFn != nil {
		return f.UpdateFieldsFn(ctx, receipt)
	}
	return nil
}

func (f *fakeReceiptRepo) CompleteReceipt(ctx context.Context, firmID string, receiptID int64, processedBy *string) (*domain.Receipt, error) {
	if f.CompleteFn != nil {
		return f.CompleteFn(ctx, firmID, receiptID, processedBy)
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeReceiptRepo) FailReceipt(ctx context.Context, firmID string, receiptID int64) error {
	if f.FailFn != nil {
		return f.FailFn(ctx, firmID, receiptID)
	}
	return nil
}

func (f *fakeReceiptRepo) DeleteReceipt(ctx context.Context, firmID string, receiptID int64) error {
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, firmID, receiptID)
	}
	return nil
}

type fakeClientRepo struct {
	FindClientFn func(ctx context.Context, firmID, clientID string) (*domain.Client, error)
}

func (f *fakeClientRepo) SaveClient(ctx context.Context, client domain.Client) error { return nil }

func (f *fakeClientRepo) FindClientByID(ctx context.Context, firmID, clientID string) (*domain.Client, error) {
	if f.FindClientFn != nil {
		return f.FindClientFn(ctx, firmID, clientID)
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeClientRepo) FindClients(ctx context.Context, firmID string, limit, offset int) ([]domain.Client, error) {
	return nil, nil
}

func (f *fakeClientRepo) UpdateClient(ctx context.Context, client domain.Client) error { return nil }

func (f *fakeClientRepo) MarkClientDeleted(ctx context.Context, firmID, clientID string, deletedAt time.Time, deletedBy string) error {
	return nil
}

type fakeUserRepo struct {
	SaveUserFn           func(ctx context.Context, user domain.User) error
	FindUserByIDFn       func(ctx context.Context, userID string) (*domain.User, error)
	FindUserByEmailFn    func(ctx context.Context, email string) (*domain.User, error)
	UpdateRefreshTokenFn func(ctx context.Context, userID string, refreshTokenHash string, expiry time.Time) error
}

func (f *fakeUserRepo) SaveUser(ctx context.Context, user domain.User) error {
	if f.SaveUserFn != nil {
		return f.SaveUserFn(ctx, user)
	}
	return nil
}

func (f *fakeUserRepo) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	if f.FindUserByIDFn != nil {
		return f.FindUserByIDFn(ctx, userID)
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.FindUserByEmailFn != nil {
		return f.FindUserByEmailFn(ctx, email)
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) FindUsers(ctx context.Context, firmID string, limit, offset int) ([]domain.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) UpdateUser(ctx context.Context, user domain.User) error { return nil }

func (f *fakeUserRepo) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, expiry time.Time) error {
	if f.UpdateRefreshTokenFn != nil {
		return f.UpdateRefreshTokenFn(ctx, userID, refreshTokenHash, expiry)
	}
	return nil
}

func (f *fakeUserRepo) ClearRefreshToken(ctx context.Context, userID string) error { return nil }

func (f *fakeUserRepo) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	return nil
}

type fakeSubscriptionRepo struct {
	UpsertFn        func(ctx context.Context, sub domain.Subscription) error
	FindFn          func(ctx context.Context, firmID string) (*domain.Subscription, error)
	MarkProcessedFn func(ctx context.Context, providerEventID string) (bool, error)
}

func (f *fakeSubscriptionRepo) UpsertSubscription(ctx context.Context, sub domain.Subscription) error {
	if f.UpsertFn != nil {
		return f.UpsertFn(ctx, sub)
	}
	return nil
}

func (f *fakeSubscriptionRepo) FindSubscriptionByFirm(ctx context.Context, firmID string) (*domain.Subscription, error) {
	if f.FindFn != nil {
		return f.FindFn(ctx, firmID)
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeSubscriptionRepo) MarkEventProcessed(ctx context.Context, providerEventID string) (bool, error) {
	if f.MarkProcessedFn != nil {
		return f.MarkProcessedFn(ctx, providerEventID)
	}
	return true, nil
}

type fakeKeyValueRepo struct {
	data map[string][]byte
	err  error
}

func newFakeKeyValueRepo() *fakeKeyValueRepo {
	return &fakeKeyValueRepo{data: map[string][]byte{}}
}

func (f *fakeKeyValueRepo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeKeyValueRepo) Set(ctx context.Context, key string, value []byte) error {
	if f.err != nil {
		return f.err
	}
	f.data[key] = value
	return nil
}

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }
