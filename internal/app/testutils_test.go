package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/metinatakli/cinex-booking/api"
	"github.com/metinatakli/cinex-booking/internal/booking"
	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/idempotency"
	"github.com/metinatakli/cinex-booking/internal/ledger"
	"github.com/metinatakli/cinex-booking/internal/mocks"
	"github.com/metinatakli/cinex-booking/internal/payment"
	"github.com/metinatakli/cinex-booking/internal/pricing"
	"github.com/metinatakli/cinex-booking/internal/quote"
	"github.com/metinatakli/cinex-booking/internal/seatmap"
	"github.com/metinatakli/cinex-booking/internal/validator"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testUserID     = 42
	testShowtimeID = 1

	testVoidBudget = time.Second
	testLockTTL    = serverWriteTimeout + testVoidBudget
)

func testShowtime() *domain.Showtime {
	return &domain.Showtime{
		ID:         testShowtimeID,
		MovieID:    3,
		MovieTitle: "Test Movie",
		Showroom:   domain.Showroom{ID: 2, Name: "Hall 2", NumRows: 2, NumCols: 3, SeatCount: 6},
		StartTime:  time.Date(2025, time.October, 20, 19, 0, 0, 0, time.UTC),
	}
}

type testDeps struct {
	showtimeRepo *mocks.MockShowtimeRepo
	promoRepo    *mocks.MockPromotionRepo
	paymentRepo  *mocks.MockPaymentRepo
	authorizer   *mocks.MockBookingAuthorizer
	redisClient  *mocks.MockRedisClient
	authority    *payment.MockPaymentAuthority
	store        *ledger.MemoryStore
	ledger       *ledger.Ledger
}

// newTestDeps wires permissive defaults: the test showtime exists, the test
// user may book and payment records are accepted.
func newTestDeps() *testDeps {
	d := &testDeps{
		showtimeRepo: new(mocks.MockShowtimeRepo),
		promoRepo:    new(mocks.MockPromotionRepo),
		paymentRepo:  new(mocks.MockPaymentRepo),
		authorizer:   new(mocks.MockBookingAuthorizer),
		redisClient:  new(mocks.MockRedisClient),
		authority:    payment.NewMockPaymentAuthority(),
		store:        ledger.NewMemoryStore(),
	}

	d.ledger = ledger.New(d.store)

	d.showtimeRepo.On("GetByID", mock.Anything, testShowtimeID).Return(testShowtime(), nil).Maybe()
	d.authorizer.On("CanBook", mock.Anything, testUserID).Return(nil).Maybe()
	d.paymentRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Payment")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Payment).ID = 1
		}).Return(nil).Maybe()
	d.paymentRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil).Maybe()

	return d
}

func newTestApplication(t *testing.T, d *testDeps) *Application {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := pricing.NewEngine(pricing.DefaultPriceTable(), d.promoRepo)

	cfg := booking.DefaultConfig()
	cfg.VoidInitialInterval = time.Millisecond
	cfg.VoidMaxInterval = 5 * time.Millisecond
	cfg.VoidMaxElapsedTime = testVoidBudget

	manager, err := booking.NewManager(booking.Deps{
		Showtimes:  d.showtimeRepo,
		Bookings:   d.store,
		Payments:   d.paymentRepo,
		Authorizer: d.authorizer,
		Authority:  d.authority,
		Ledger:     d.ledger,
		Pricing:    engine,
		Logger:     logger,
	}, cfg)
	require.NoError(t, err)

	openapiRouter, err := newOpenAPIRouter()
	require.NoError(t, err)

	return &Application{
		config: Config{
			Env: "test",
			Booking: BookingConfig{
				LedgerBackend: LedgerMemory,
				Currency:      "USD",
				HoldTTL:       cfg.HoldTTL,
			},
		},
		logger:         logger,
		validator:      validator.NewValidator(),
		sessionManager: scs.New(),
		openapi:        openapiRouter,
		showtimes:      d.showtimeRepo,
		pricing:        engine,
		seatMap:        seatmap.New(d.ledger),
		quotes:         quote.NewService(d.showtimeRepo, d.ledger, engine, d.ledger.Now),
		bookings:       manager,
		idempotency:    idempotency.NewStore(d.redisClient, 24*time.Hour, idempotencyLockTTL(cfg)),
	}
}

// loginCookie stores a session for userId and returns its cookie.
func loginCookie(t *testing.T, app *Application, userId int) *http.Cookie {
	ctx, err := app.sessionManager.Load(context.Background(), "")
	require.NoError(t, err)

	app.sessionManager.Put(ctx, SessionKeyUserId.String(), userId)

	token, _, err := app.sessionManager.Commit(ctx)
	require.NoError(t, err)

	return &http.Cookie{Name: app.sessionManager.Cookie.Name, Value: token}
}

func newRequest(t *testing.T, method, url string, body any) *http.Request {
	var reader io.Reader = http.NoBody

	if body != nil {
		jsonData, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")

	return r
}

func serve(app *Application, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.Routes().ServeHTTP(w, r)

	return w
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantCode       string
	wantErrMessage string
}) {
	t.Helper()

	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	if tt.wantCode == CodeValidationFailed {
		var validationResp api.ValidationErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&validationResp))
		require.Equal(t, CodeValidationFailed, validationResp.Code)

		issues := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			issues[vErr.Issue] = true
		}

		require.True(t, issues[tt.wantErrMessage],
			"validation issue %q not found in %+v", tt.wantErrMessage, validationResp.ValidationErrors)
		return
	}

	var errorResp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&errorResp))

	require.NotEmpty(t, errorResp.RequestId)
	require.False(t, errorResp.Timestamp.IsZero())

	if tt.wantCode != "" {
		require.Equal(t, tt.wantCode, errorResp.Code)
	}
	if tt.wantErrMessage != "" {
		require.Equal(t, tt.wantErrMessage, errorResp.Message)
	}
}

func decodeAndCompare[T any](t *testing.T, w *httptest.ResponseRecorder, want T, opts ...cmp.Option) {
	t.Helper()

	var got T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got), "failed to decode response")

	opts = append(opts, cmpopts.EquateEmpty())

	diff := cmp.Diff(want, got, opts...)
	require.Empty(t, diff, "response mismatch (-want +got):\n%s", diff)
}

func seat(t *testing.T, label string) domain.SeatID {
	id, err := domain.ParseSeatID(label)
	require.NoError(t, err)

	return id
}

func ptr[T any](v T) *T {
	return &v
}
