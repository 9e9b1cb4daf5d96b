package listing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/wastewise/wastewise/internal/auth"
	"github.com/wastewise/wastewise/internal/listing"
)

func validParams() listing.CreateParams {
	return listing.CreateParams{
		Title:        "5 Tons Scrap Metal",
		MaterialType: "Scrap Metal",
		Quantity:     decimal.NewFromInt(5),
		PricePerUnit: decimal.NewFromInt(100),
		LocationName: "Nairobi",
	}
}

func TestService_Create(t *testing.T) {
	errDB := errors.New("db error")
	seller := auth.Principal{UserID: uuid.New(), Role: auth.RoleSeller}

	type testCase struct {
		name      string
		principal auth.Principal
		params    func() listing.CreateParams
		setupMock func(m *listing.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:      "Success",
			principal: seller,
			params:    validParams,
			setupMock: func(m *listing.MockRepository) {
				m.EXPECT().
					CreateListing(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, l *listing.Listing) error {
						l.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name:      "FreeMaterial",
			principal: auth.Principal{UserID: uuid.New(), Role: auth.RoleBoth},
			params: func() listing.CreateParams {
				p := validParams()
				p.PricePerUnit = decimal.Zero
				return p
			},
			setupMock: func(m *listing.MockRepository) {
				m.EXPECT().CreateListing(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:      "BuyerForbidden",
			principal: auth.Principal{UserID: uuid.New(), Role: auth.RoleBuyer},
			params:    validParams,
			wantErr:   listing.ErrForbidden,
		},
		{
			name:      "ZeroQuantity",
			principal: seller,
			params: func() listing.CreateParams {
				p := validParams()
				p.Quantity = decimal.Zero
				return p
			},
			wantErr: listing.ErrInvalid,
		},
		{
			name:      "NegativePrice",
			principal: seller,
			params: func() listing.CreateParams {
				p := validParams()
				p.PricePerUnit = decimal.NewFromInt(-1)
				return p
			},
			wantErr: listing.ErrInvalid,
		},
		{
			name:      "QuantityTooPrecise",
			principal: seller,
			params: func() listing.CreateParams {
				p := validParams()
				p.Quantity = decimal.RequireFromString("0.0001")
				return p
			},
			wantErr: listing.ErrInvalid,
		},
		{
			name:      "PriceTooPrecise",
			principal: seller,
			params: func() listing.CreateParams {
				p := validParams()
				p.PricePerUnit = decimal.RequireFromString("1.005")
				return p
			},
			wantErr: listing.ErrInvalid,
		},
		{
			name:      "PriceOverflow",
			principal: seller,
			params: func() listing.CreateParams {
				p := validParams()
				p.PricePerUnit = decimal.RequireFromString("1e16")
				return p
			},
			wantErr: listing.ErrInvalid,
		},
		{
			name:      "UnknownUnit",
			principal: seller,
			params: func() listing.CreateParams {
				p := validParams()
				p.Unit = "Barrels"
				return p
			},
			wantErr: listing.ErrInvalid,
		},
		{
			name:      "MissingTitle",
			principal: seller,
			params: func() listing.CreateParams {
				p := validParams()
				p.Title = "   "
				return p
			},
			wantErr: listing.ErrInvalid,
		},
		{
			name:      "RepoError",
			principal: seller,
			params:    validParams,
			setupMock: func(m *listing.MockRepository) {
				m.EXPECT().CreateListing(gomock.Any(), gomock.Any()).Return(errDB)
			},
			wantErr: errDB,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := listing.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := listing.NewService(repo)
			got, err := svc.Create(context.Background(), tt.principal, tt.params())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, listing.StatusActive, got.Status)
			assert.Equal(t, listing.UnitTons, got.Unit)
			assert.Equal(t, tt.principal.UserID, got.SellerID)
		})
	}
}

func TestService_Import(t *testing.T) {
	errDB := errors.New("db error")
	seller := auth.Principal{UserID: uuid.New(), Role: auth.RoleSeller}

	second := validParams()
	second.Title = "PET flakes"
	second.Unit = listing.UnitKgs

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := listing.NewMockRepository(ctrl)
		repo.EXPECT().
			CreateListings(gomock.Any(), gomock.Len(2)).
			DoAndReturn(func(_ context.Context, ls []*listing.Listing) error {
				for _, l := range ls {
					l.ID = uuid.New()
				}

				return nil
			})

		got, err := listing.NewService(repo).Import(context.Background(), seller, []listing.CreateParams{validParams(), second})
		require.NoError(t, err)
		require.Len(t, got, 2)

		for _, l := range got {
			assert.NotEqual(t, uuid.Nil, l.ID)
			assert.Equal(t, seller.UserID, l.SellerID)
			assert.Equal(t, listing.StatusActive, l.Status)
		}

		assert.Equal(t, listing.UnitTons, got[0].Unit)
		assert.Equal(t, listing.UnitKgs, got[1].Unit)
	})

	t.Run("InvalidRowRejectsBatch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		bad := validParams()
		bad.Quantity = decimal.Zero

		_, err := listing.NewService(listing.NewMockRepository(ctrl)).
			Import(context.Background(), seller, []listing.CreateParams{validParams(), bad})
		require.ErrorIs(t, err, listing.ErrInvalid)
		assert.Contains(t, err.Error(), "listing 2: ")
	})

	t.Run("Empty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		_, err := listing.NewService(listing.NewMockRepository(ctrl)).Import(context.Background(), seller, nil)
		assert.ErrorIs(t, err, listing.ErrInvalid)
	})

	t.Run("BuyerForbidden", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		buyer := auth.Principal{UserID: uuid.New(), Role: auth.RoleBuyer}
		_, err := listing.NewService(listing.NewMockRepository(ctrl)).
			Import(context.Background(), buyer, []listing.CreateParams{validParams()})
		assert.ErrorIs(t, err, listing.ErrForbidden)
	})

	t.Run("RepoError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := listing.NewMockRepository(ctrl)
		repo.EXPECT().CreateListings(gomock.Any(), gomock.Any()).Return(errDB)

		_, err := listing.NewService(repo).Import(context.Background(), seller, []listing.CreateParams{validParams()})
		assert.ErrorIs(t, err, errDB)
	})
}

func TestService_ListActive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := listing.NewMockRepository(ctrl)
	repo.EXPECT().
		ListListings(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f listing.ListFilter) ([]*listing.Listing, error) {
			require.NotNil(t, f.Status)
			assert.Equal(t, listing.StatusActive, *f.Status)
			assert.Equal(t, listing.MarketplaceLimit, f.Limit)
			assert.Nil(t, f.SellerID)

			return []*listing.Listing{{ID: uuid.New()}}, nil
		})

	got, err := listing.NewService(repo).ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestService_GetActive(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		stored  *listing.Listing
		repoErr error
		wantErr error
	}{
		{name: "Active", stored: &listing.Listing{ID: id, Status: listing.StatusActive}},
		{name: "Pending", stored: &listing.Listing{ID: id, Status: listing.StatusPending}, wantErr: listing.ErrNotFound},
		{name: "Sold", stored: &listing.Listing{ID: id, Status: listing.StatusSold}, wantErr: listing.ErrNotFound},
		{name: "Missing", repoErr: listing.ErrNotFound, wantErr: listing.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := listing.NewMockRepository(ctrl)
			repo.EXPECT().GetListing(gomock.Any(), id).Return(tt.stored, tt.repoErr)

			got, err := listing.NewService(repo).GetActive(context.Background(), id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, id, got.ID)
		})
	}
}

func TestService_SetStatus(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name      string
		status    listing.Status
		setupMock func(m *listing.MockRepository)
		wantErr   error
	}{
		{
			name:   "PendingFromActive",
			status: listing.StatusPending,
			setupMock: func(m *listing.MockRepository) {
				m.EXPECT().
					AdvanceStatus(gomock.Any(), id, listing.StatusPending, []listing.Status{listing.StatusActive}).
					Return(true, nil)
			},
		},
		{
			name:   "SoldFromActiveOrPending",
			status: listing.StatusSold,
			setupMock: func(m *listing.MockRepository) {
				m.EXPECT().
					AdvanceStatus(gomock.Any(), id, listing.StatusSold, []listing.Status{listing.StatusActive, listing.StatusPending}).
					Return(true, nil)
			},
		},
		{
			name:   "AlreadySoldIgnoresPending",
			status: listing.StatusPending,
			setupMock: func(m *listing.MockRepository) {
				m.EXPECT().AdvanceStatus(gomock.Any(), id, listing.StatusPending, gomock.Any()).Return(false, nil)
			},
		},
		{
			name:   "Missing",
			status: listing.StatusSold,
			setupMock: func(m *listing.MockRepository) {
				m.EXPECT().AdvanceStatus(gomock.Any(), id, listing.StatusSold, gomock.Any()).Return(false, listing.ErrNotFound)
			},
			wantErr: listing.ErrNotFound,
		},
		{name: "BackToActive", status: listing.StatusActive, wantErr: listing.ErrInvalid},
		{name: "Unknown", status: "Archived", wantErr: listing.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := listing.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			err := listing.NewService(repo).SetStatus(context.Background(), id, tt.status)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestStatus_Predecessors(t *testing.T) {
	assert.Empty(t, listing.StatusActive.Predecessors())
	assert.Equal(t, []listing.Status{listing.StatusActive}, listing.StatusPending.Predecessors())
	assert.Equal(t, []listing.Status{listing.StatusActive, listing.StatusPending}, listing.StatusSold.Predecessors())
	assert.Nil(t, listing.Status("Archived").Predecessors())
}

func TestFitsNumeric(t *testing.T) {
	tests := []struct {
		value  string
		places int32
		want   bool
	}{
		{"12.50", listing.PricePlaces, true},
		{"1.005", listing.PricePlaces, false},
		{"0.001", listing.PricePlaces, false},
		{"2.125", listing.QuantityPlaces, true},
		{"0.0001", listing.QuantityPlaces, false},
		{"9999999999999999.99", listing.PricePlaces, true},
		{"10000000000000000", listing.PricePlaces, false},
		{"1000000000000000", listing.QuantityPlaces, false},
	}

	for _, tt := range tests {
		got := listing.FitsNumeric(decimal.RequireFromString(tt.value), tt.places)
		assert.Equal(t, tt.want, got, "FitsNumeric(%s, %d)", tt.value, tt.places)
	}
}
