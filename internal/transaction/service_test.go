package transaction_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/wastewise/wastewise/internal/auth"
	"github.com/wastewise/wastewise/internal/listing"
	"github.com/wastewise/wastewise/internal/transaction"
)

var errDB = errors.New("db error")

func activeListing() *listing.Listing {
	return &listing.Listing{
		ID:           uuid.New(),
		SellerID:     uuid.New(),
		Title:        "5 Tons Scrap Metal",
		MaterialType: "Scrap Metal",
		Quantity:     decimal.NewFromInt(5),
		Unit:         listing.UnitTons,
		PricePerUnit: decimal.NewFromInt(100),
		Status:       listing.StatusActive,
	}
}

func offer(l *listing.Listing) transaction.OfferParams {
	return transaction.OfferParams{
		ListingID:      l.ID,
		AgreedPrice:    decimal.NewFromInt(450),
		AgreedQuantity: decimal.NewFromInt(5),
	}
}

func TestService_CreateOffer(t *testing.T) {
	buyer := auth.Principal{UserID: uuid.New(), Role: auth.RoleBuyer}

	type testCase struct {
		name      string
		principal auth.Principal
		listing   func() *listing.Listing
		params    func(l *listing.Listing) transaction.OfferParams
		opts      []transaction.Option
		setupMock func(repo *transaction.MockRepository, listings *transaction.MockListings, l *listing.Listing)
		wantErr   error
	}

	tests := []testCase{
		{
			name:      "Success",
			principal: buyer,
			listing:   activeListing,
			params:    offer,
			setupMock: func(repo *transaction.MockRepository, listings *transaction.MockListings, l *listing.Listing) {
				listings.EXPECT().Get(gomock.Any(), l.ID).Return(l, nil)
				repo.EXPECT().HasOpenOffer(gomock.Any(), l.ID, buyer.UserID).Return(false, nil)
				repo.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						tx.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name:      "SellerRoleForbidden",
			principal: auth.Principal{UserID: uuid.New(), Role: auth.RoleSeller},
			listing:   activeListing,
			params:    offer,
			wantErr:   transaction.ErrForbidden,
		},
		{
			name:      "AdminForbidden",
			principal: auth.Principal{UserID: uuid.New(), Role: auth.RoleAdmin},
			listing:   activeListing,
			params:    offer,
			wantErr:   transaction.ErrForbidden,
		},
		{
			name:      "ZeroPrice",
			principal: buyer,
			listing:   activeListing,
			params: func(l *listing.Listing) transaction.OfferParams {
				p := offer(l)
				p.AgreedPrice = decimal.Zero
				return p
			},
			wantErr: transaction.ErrInvalidOffer,
		},
		{
			name:      "PriceRoundsToZero",
			principal: buyer,
			listing:   activeListing,
			params: func(l *listing.Listing) transaction.OfferParams {
				p := offer(l)
				p.AgreedPrice = decimal.RequireFromString("0.001")
				return p
			},
			wantErr: transaction.ErrInvalidOffer,
		},
		{
			name:      "PriceTooPrecise",
			principal: buyer,
			listing:   activeListing,
			params: func(l *listing.Listing) transaction.OfferParams {
				p := offer(l)
				p.AgreedPrice = decimal.RequireFromString("1.005")
				return p
			},
			wantErr: transaction.ErrInvalidOffer,
		},
		{
			name:      "QuantityTooPrecise",
			principal: buyer,
			listing:   activeListing,
			params: func(l *listing.Listing) transaction.OfferParams {
				p := offer(l)
				p.AgreedQuantity = decimal.RequireFromString("0.0001")
				return p
			},
			wantErr: transaction.ErrInvalidOffer,
		},
		{
			name:      "NegativeQuantity",
			principal: buyer,
			listing:   activeListing,
			params: func(l *listing.Listing) transaction.OfferParams {
				p := offer(l)
				p.AgreedQuantity = decimal.NewFromInt(-1)
				return p
			},
			wantErr: transaction.ErrInvalidOffer,
		},
		{
			name:      "ListingMissing",
			principal: buyer,
			listing:   activeListing,
			params:    offer,
			setupMock: func(_ *transaction.MockRepository, listings *transaction.MockListings, l *listing.Listing) {
				listings.EXPECT().Get(gomock.Any(), l.ID).Return(nil, listing.ErrNotFound)
			},
			wantErr: transaction.ErrListingUnavailable,
		},
		{
			name:      "ListingPending",
			principal: buyer,
			listing: func() *listing.Listing {
				l := activeListing()
				l.Status = listing.StatusPending
				return l
			},
			params: offer,
			setupMock: func(_ *transaction.MockRepository, listings *transaction.MockListings, l *listing.Listing) {
				listings.EXPECT().Get(gomock.Any(), l.ID).Return(l, nil)
			},
			wantErr: transaction.ErrListingUnavailable,
		},
		{
			name:      "ListingLookupFails",
			principal: buyer,
			listing:   activeListing,
			params:    offer,
			setupMock: func(_ *transaction.MockRepository, listings *transaction.MockListings, l *listing.Listing) {
				listings.EXPECT().Get(gomock.Any(), l.ID).Return(nil, errDB)
			},
			wantErr: errDB,
		},
		{
			name:      "OwnListing",
			principal: buyer,
			listing: func() *listing.Listing {
				l := activeListing()
				l.SellerID = buyer.UserID
				return l
			},
			params: offer,
			setupMock: func(_ *transaction.MockRepository, listings *transaction.MockListings, l *listing.Listing) {
				listings.EXPECT().Get(gomock.Any(), l.ID).Return(l, nil)
			},
			wantErr: transaction.ErrSelfOffer,
		},
		{
			name:      "DuplicateOffer",
			principal: buyer,
			listing:   activeListing,
			params:    offer,
			setupMock: func(repo *transaction.MockRepository, listings *transaction.MockListings, l *listing.Listing) {
				listings.EXPECT().Get(gomock.Any(), l.ID).Return(l, nil)
				repo.EXPECT().HasOpenOffer(gomock.Any(), l.ID, buyer.UserID).Return(true, nil)
			},
			wantErr: transaction.ErrDuplicateOffer,
		},
		{
			name:      "DuplicateOfferRace",
			principal: buyer,
			listing:   activeListing,
			params:    offer,
			setupMock: func(repo *transaction.MockRepository, listings *transaction.MockListings, l *listing.Listing) {
				listings.EXPECT().Get(gomock.Any(), l.ID).Return(l, nil)
				repo.EXPECT().HasOpenOffer(gomock.Any(), l.ID, buyer.UserID).Return(false, nil)
				repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(transaction.ErrDuplicateOffer)
			},
			wantErr: transaction.ErrDuplicateOffer,
		},
		{
			name:      "OverQuantityLenient",
			principal: buyer,
			listing:   activeListing,
			params: func(l *listing.Listing) transaction.OfferParams {
				p := offer(l)
				p.AgreedQuantity = decimal.NewFromInt(50)
				return p
			},
			setupMock: func(repo *transaction.MockRepository, listings *transaction.MockListings, l *listing.Listing) {
				listings.EXPECT().Get(gomock.Any(), l.ID).Return(l, nil)
				repo.EXPECT().HasOpenOffer(gomock.Any(), l.ID, buyer.UserID).Return(false, nil)
				repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:      "OverQuantityStrict",
			principal: buyer,
			listing:   activeListing,
			params: func(l *listing.Listing) transaction.OfferParams {
				p := offer(l)
				p.AgreedQuantity = decimal.NewFromInt(50)
				return p
			},
			opts: []transaction.Option{transaction.WithStrictOfferQuantity(true)},
			setupMock: func(_ *transaction.MockRepository, listings *transaction.MockListings, l *listing.Listing) {
				listings.EXPECT().Get(gomock.Any(), l.ID).Return(l, nil)
			},
			wantErr: transaction.ErrInvalidOffer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := transaction.NewMockRepository(ctrl)
			listings := transaction.NewMockListings(ctrl)

			l := tt.listing()
			if tt.setupMock != nil {
				tt.setupMock(repo, listings, l)
			}

			svc := transaction.NewService(repo, listings, tt.opts...)
			tx, err := svc.CreateOffer(context.Background(), tt.principal, tt.params(l))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, tx)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, tx)
			assert.Equal(t, transaction.StatusPendingPayment, tx.Status)
			assert.Equal(t, l.ID, tx.ListingID)
			assert.Equal(t, l.SellerID, tx.SellerID)
			assert.Equal(t, tt.principal.UserID, tx.BuyerID)
			assert.True(t, transaction.DefaultCommissionRate.Equal(tx.CommissionRate))
			require.NotNil(t, tx.Listing)
			assert.Equal(t, l.Title, tx.Listing.Title)
		})
	}
}

func TestService_CreateOffer_CommissionRate(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	listings := transaction.NewMockListings(ctrl)

	l := activeListing()
	buyer := auth.Principal{UserID: uuid.New(), Role: auth.RoleBoth}
	rate := decimal.RequireFromString("0.05")

	listings.EXPECT().Get(gomock.Any(), l.ID).Return(l, nil)
	repo.EXPECT().HasOpenOffer(gomock.Any(), l.ID, buyer.UserID).Return(false, nil)
	repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)

	svc := transaction.NewService(repo, listings, transaction.WithCommissionRate(rate))
	tx, err := svc.CreateOffer(context.Background(), buyer, offer(l))
	require.NoError(t, err)

	assert.True(t, rate.Equal(tx.CommissionRate))
	assert.Equal(t, "22.50", tx.Commission().StringFixed(2))
}

func deal(status transaction.Status) *transaction.Transaction {
	return &transaction.Transaction{
		ID:             uuid.New(),
		ListingID:      uuid.New(),
		SellerID:       uuid.New(),
		BuyerID:        uuid.New(),
		AgreedPrice:    decimal.NewFromInt(450),
		AgreedQuantity: decimal.NewFromInt(5),
		CommissionRate: transaction.DefaultCommissionRate,
		Status:         status,
	}
}

type transitionFunc func(s *transaction.Service, ctx context.Context, p auth.Principal, id uuid.UUID) (*transaction.Result, error)

func TestService_Transitions(t *testing.T) {
	pay := (*transaction.Service).Pay
	deliver := (*transaction.Service).MarkDelivered
	confirm := (*transaction.Service).ConfirmReceipt

	tests := []struct {
		name        string
		call        transitionFunc
		from        transaction.Status
		to          transaction.Status
		asSeller    bool
		wantListing listing.Status
	}{
		{name: "Pay", call: pay, from: transaction.StatusPendingPayment, to: transaction.StatusPaidToEscrow, wantListing: listing.StatusPending},
		{name: "MarkDelivered", call: deliver, from: transaction.StatusPaidToEscrow, to: transaction.StatusDelivered, asSeller: true},
		{name: "ConfirmReceipt", call: confirm, from: transaction.StatusDelivered, to: transaction.StatusCompleted, wantListing: listing.StatusSold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := transaction.NewMockRepository(ctrl)
			listings := transaction.NewMockListings(ctrl)

			tx := deal(tt.from)
			p := auth.Principal{UserID: tx.BuyerID, Role: auth.RoleBuyer}
			if tt.asSeller {
				p = auth.Principal{UserID: tx.SellerID, Role: auth.RoleSeller}
			}

			updatedAt := time.Now().UTC()
			repo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)
			repo.EXPECT().CompareAndSetStatus(gomock.Any(), tx.ID, tt.from, tt.to).Return(updatedAt, nil)
			if tt.wantListing != "" {
				listings.EXPECT().SetStatus(gomock.Any(), tx.ListingID, tt.wantListing).Return(nil)
			}

			res, err := tt.call(transaction.NewService(repo, listings), context.Background(), p, tx.ID)
			require.NoError(t, err)

			assert.Equal(t, tt.to, res.Transaction.Status)
			assert.Equal(t, updatedAt, res.Transaction.UpdatedAt)

			if tt.wantListing == "" {
				assert.Empty(t, res.Events)
			} else {
				assert.Equal(t, []transaction.AvailabilityChanged{{ListingID: tx.ListingID, Status: tt.wantListing}}, res.Events)
			}
		})
	}
}

func TestService_Pay_Rejected(t *testing.T) {
	tests := []struct {
		name      string
		status    transaction.Status
		asSeller  bool
		getErr    error
		wantErr   error
		wantState transaction.Status
	}{
		{name: "NotFound", getErr: transaction.ErrNotFound, wantErr: transaction.ErrNotFound},
		{name: "SellerCannotPay", status: transaction.StatusPendingPayment, asSeller: true, wantErr: transaction.ErrForbidden},
		{name: "AlreadyPaid", status: transaction.StatusPaidToEscrow, wantErr: transaction.ErrInvalidState, wantState: transaction.StatusPaidToEscrow},
		{name: "Completed", status: transaction.StatusCompleted, wantErr: transaction.ErrInvalidState, wantState: transaction.StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := transaction.NewMockRepository(ctrl)
			listings := transaction.NewMockListings(ctrl)

			tx := deal(tt.status)
			p := auth.Principal{UserID: tx.BuyerID, Role: auth.RoleBuyer}
			if tt.asSeller {
				p = auth.Principal{UserID: tx.SellerID, Role: auth.RoleSeller}
			}

			if tt.getErr != nil {
				repo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(nil, tt.getErr)
			} else {
				repo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)
			}

			res, err := transaction.NewService(repo, listings).Pay(context.Background(), p, tx.ID)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantErr)

			if tt.wantState != "" {
				var stateErr *transaction.StateError
				require.ErrorAs(t, err, &stateErr)
				assert.Equal(t, tt.wantState, stateErr.Actual)
			}
		})
	}
}

func TestService_Pay_LostRace(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	listings := transaction.NewMockListings(ctrl)

	tx := deal(transaction.StatusPendingPayment)
	buyer := auth.Principal{UserID: tx.BuyerID, Role: auth.RoleBuyer}

	after := *tx
	after.Status = transaction.StatusPaidToEscrow

	gomock.InOrder(
		repo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil),
		repo.EXPECT().
			CompareAndSetStatus(gomock.Any(), tx.ID, transaction.StatusPendingPayment, transaction.StatusPaidToEscrow).
			Return(time.Time{}, transaction.ErrStatusChanged),
		repo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(&after, nil),
	)

	res, err := transaction.NewService(repo, listings).Pay(context.Background(), buyer, tx.ID)
	assert.Nil(t, res)

	var stateErr *transaction.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.ErrorIs(t, err, transaction.ErrInvalidState)
	assert.Equal(t, transaction.StatusPaidToEscrow, stateErr.Actual)
}

type txKey struct{}

// fakeTransactor marks the context passed to fn so tests can tell which calls
// ran inside the transaction.
type fakeTransactor struct {
	calls     int
	commitErr error
}

func (f *fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		return err
	}

	return f.commitErr
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

func TestService_Pay_AppliesEventInTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	listings := transaction.NewMockListings(ctrl)

	tx := deal(transaction.StatusPendingPayment)
	buyer := auth.Principal{UserID: tx.BuyerID, Role: auth.RoleBuyer}

	repo.EXPECT().
		GetTransaction(gomock.Any(), tx.ID).
		DoAndReturn(func(ctx context.Context, _ uuid.UUID) (*transaction.Transaction, error) {
			assert.False(t, inTx(ctx))
			return tx, nil
		})
	repo.EXPECT().
		CompareAndSetStatus(gomock.Any(), tx.ID, transaction.StatusPendingPayment, transaction.StatusPaidToEscrow).
		DoAndReturn(func(ctx context.Context, _ uuid.UUID, _, _ transaction.Status) (time.Time, error) {
			assert.True(t, inTx(ctx))
			return time.Now(), nil
		})
	listings.EXPECT().
		SetStatus(gomock.Any(), tx.ListingID, listing.StatusPending).
		DoAndReturn(func(ctx context.Context, _ uuid.UUID, _ listing.Status) error {
			assert.True(t, inTx(ctx))
			return nil
		})

	txr := &fakeTransactor{}
	svc := transaction.NewService(repo, listings, transaction.WithTransactor(txr))

	_, err := svc.Pay(context.Background(), buyer, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, txr.calls)
}

func TestService_Pay_RollsBackWithListing(t *testing.T) {
	errCommit := errors.New("commit failed")

	tests := []struct {
		name      string
		listErr   error
		commitErr error
		wantErr   error
	}{
		{name: "ListingUpdateFails", listErr: errDB, wantErr: errDB},
		{name: "CommitFails", commitErr: errCommit, wantErr: errCommit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := transaction.NewMockRepository(ctrl)
			listings := transaction.NewMockListings(ctrl)

			tx := deal(transaction.StatusPendingPayment)
			buyer := auth.Principal{UserID: tx.BuyerID, Role: auth.RoleBuyer}

			repo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)
			repo.EXPECT().CompareAndSetStatus(gomock.Any(), tx.ID, gomock.Any(), gomock.Any()).Return(time.Now(), nil)
			listings.EXPECT().SetStatus(gomock.Any(), tx.ListingID, listing.StatusPending).Return(tt.listErr)

			svc := transaction.NewService(repo, listings, transaction.WithTransactor(&fakeTransactor{commitErr: tt.commitErr}))

			res, err := svc.Pay(context.Background(), buyer, tx.ID)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, transaction.StatusPendingPayment, tx.Status)
		})
	}
}

// memListings is an in-memory listing.Repository honoring the conditional
// status write.
type memListings struct {
	byID map[uuid.UUID]*listing.Listing
}

func (m *memListings) CreateListing(_ context.Context, l *listing.Listing) error {
	l.ID = uuid.New()
	m.byID[l.ID] = l

	return nil
}

func (m *memListings) CreateListings(ctx context.Context, ls []*listing.Listing) error {
	for _, l := range ls {
		_ = m.CreateListing(ctx, l)
	}

	return nil
}

func (m *memListings) GetListing(_ context.Context, id uuid.UUID) (*listing.Listing, error) {
	l, ok := m.byID[id]
	if !ok {
		return nil, listing.ErrNotFound
	}

	return l, nil
}

func (m *memListings) ListListings(context.Context, listing.ListFilter) ([]*listing.Listing, error) {
	return nil, nil
}

func (m *memListings) AdvanceStatus(_ context.Context, id uuid.UUID, to listing.Status, from []listing.Status) (bool, error) {
	l, ok := m.byID[id]
	if !ok {
		return false, listing.ErrNotFound
	}

	if !slices.Contains(from, l.Status) {
		return false, nil
	}

	l.Status = to

	return true, nil
}

func TestService_StalePayDoesNotReopenSoldListing(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)

	l := activeListing()
	store := &memListings{byID: map[uuid.UUID]*listing.Listing{l.ID: l}}
	svc := transaction.NewService(repo, listing.NewService(store))

	first := deal(transaction.StatusPendingPayment)
	first.ListingID, first.SellerID = l.ID, l.SellerID

	second := deal(transaction.StatusPendingPayment)
	second.ListingID, second.SellerID = l.ID, l.SellerID

	repo.EXPECT().GetTransaction(gomock.Any(), first.ID).Return(first, nil).Times(3)
	repo.EXPECT().GetTransaction(gomock.Any(), second.ID).Return(second, nil)
	repo.EXPECT().CompareAndSetStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(time.Now(), nil).Times(4)

	ctx := context.Background()
	buyer1 := auth.Principal{UserID: first.BuyerID, Role: auth.RoleBuyer}
	buyer2 := auth.Principal{UserID: second.BuyerID, Role: auth.RoleBuyer}
	seller := auth.Principal{UserID: l.SellerID, Role: auth.RoleSeller}

	_, err := svc.Pay(ctx, buyer1, first.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusPending, l.Status)

	_, err = svc.MarkDelivered(ctx, seller, first.ID)
	require.NoError(t, err)

	_, err = svc.ConfirmReceipt(ctx, buyer1, first.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusSold, l.Status)

	_, err = svc.Pay(ctx, buyer2, second.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusSold, l.Status)
}

func TestService_Get(t *testing.T) {
	tx := deal(transaction.StatusDelivered)

	tests := []struct {
		name      string
		principal auth.Principal
		wantErr   error
	}{
		{name: "Buyer", principal: auth.Principal{UserID: tx.BuyerID, Role: auth.RoleBuyer}},
		{name: "Seller", principal: auth.Principal{UserID: tx.SellerID, Role: auth.RoleBoth}},
		{name: "Admin", principal: auth.Principal{UserID: uuid.New(), Role: auth.RoleAdmin}},
		{name: "Stranger", principal: auth.Principal{UserID: uuid.New(), Role: auth.RoleBoth}, wantErr: transaction.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := transaction.NewMockRepository(ctrl)
			repo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)

			got, err := transaction.NewService(repo, nil).Get(context.Background(), tt.principal, tx.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tx, got)
		})
	}
}

func TestService_ListForUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)

	p := auth.Principal{UserID: uuid.New(), Role: auth.RoleBoth}
	want := []*transaction.Transaction{deal(transaction.StatusCompleted)}

	repo.EXPECT().
		ListTransactions(gomock.Any(), transaction.ListFilter{ParticipantID: &p.UserID, Limit: transaction.DashboardLimit}).
		Return(want, nil)

	got, err := transaction.NewService(repo, nil).ListForUser(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
