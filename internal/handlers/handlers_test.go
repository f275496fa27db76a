package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/pitstop/garage-bookings/internal/domain"
	"github.com/pitstop/garage-bookings/internal/handlers"
	"github.com/pitstop/garage-bookings/internal/service"
	"github.com/pitstop/garage-bookings/pkg/auth"
	"github.com/pitstop/garage-bookings/pkg/config"
)

// ---------- Mocks ----------

type memStore struct {
	nextUserID    int64
	nextBookingID int64
	users         map[int64]*domain.User
	bookings      map[int64]*domain.Booking
}

func newMemStore() *memStore {
	return &memStore{
		nextUserID:    1,
		nextBookingID: 1,
		users:         make(map[int64]*domain.User),
		bookings:      make(map[int64]*domain.Booking),
	}
}

func (m *memStore) addUser(username, password, fullname, phone, email, userType string) *domain.User {
	u := &domain.User{
		ID:           m.nextUserID,
		Username:     username,
		PasswordHash: auth.HashPassword(password),
		FullName:     fullname,
		PhoneNumber:  phone,
		Email:        email,
		UserType:     userType,
		CreatedAt:    time.Now(),
	}
	m.users[u.ID] = u
	m.nextUserID++
	return u
}

func (m *memStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindByTrackingKey(_ context.Context, key string) (*domain.User, error) {
	for _, u := range m.users {
		if u.PhoneNumber == key || u.Email == key {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memStore) Create(_ context.Context, req *domain.BookingRequest, date, clock string) (*domain.Booking, *domain.User, bool, error) {
	var user *domain.User
	for _, u := range m.users {
		if u.Email == req.Email {
			user = u
			break
		}
	}
	created := false
	if user == nil {
		user = m.addUser(req.Email, req.Phone, req.FullName(), req.Phone, req.Email, domain.RoleCustomer)
		created = true
	}

	for _, b := range m.bookings {
		if b.BookingDate == date && b.BookingTime == clock && b.Status.Active() {
			return nil, nil, false, domain.ErrSlotTaken
		}
	}

	b := &domain.Booking{
		ID:           m.nextBookingID,
		UserID:       user.ID,
		ServiceType:  req.ServiceType,
		BookingDate:  date,
		BookingTime:  clock,
		LicensePlate: req.LicensePlate,
		Status:       domain.StatusConfirmed,
		CreatedAt:    time.Now(),
	}
	m.bookings[b.ID] = b
	m.nextBookingID++
	return b, user, created, nil
}

func (m *memStore) view(b *domain.Booking) domain.BookingView {
	v := domain.BookingView{
		ID: b.ID, UserID: b.UserID,
		FullName: "N/A", PhoneNumber: "N/A", Email: "N/A",
		ServiceType: b.ServiceType, BookingDate: b.BookingDate, BookingTime: b.BookingTime,
		LicensePlate: b.LicensePlate, Status: string(b.Status),
	}
	if u, ok := m.users[b.UserID]; ok {
		v.FullName, v.PhoneNumber, v.Email = u.FullName, u.PhoneNumber, u.Email
	}
	return v
}

func (m *memStore) LatestViewByUser(_ context.Context, userID int64) (*domain.BookingView, error) {
	var owned []*domain.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			owned = append(owned, b)
		}
	}
	if len(owned) == 0 {
		return nil, nil
	}
	sort.Slice(owned, func(i, j int) bool {
		if owned[i].BookingDate != owned[j].BookingDate {
			return owned[i].BookingDate > owned[j].BookingDate
		}
		if owned[i].BookingTime != owned[j].BookingTime {
			return owned[i].BookingTime > owned[j].BookingTime
		}
		return owned[i].ID > owned[j].ID
	})
	v := m.view(owned[0])
	return &v, nil
}

func (m *memStore) ListViews(_ context.Context) ([]domain.BookingView, error) {
	views := make([]domain.BookingView, 0, len(m.bookings))
	for _, b := range m.bookings {
		views = append(views, m.view(b))
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].BookingDate != views[j].BookingDate {
			return views[i].BookingDate < views[j].BookingDate
		}
		return views[i].BookingTime < views[j].BookingTime
	})
	return views, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus) (*domain.BookingView, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	b.Status = status
	v := m.view(b)
	return &v, nil
}

type nopBus struct{}

func (nopBus) Publish(context.Context, string, interface{}) error { return nil }
func (nopBus) Close() error                                       { return nil }

// ---------- Helpers ----------

func newServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()

	store := newMemStore()
	store.addUser("admin@garage.com", "0811234567", "Garage Admin", "0811234567", "admin@garage.com", domain.RoleAdmin)

	cfg := config.Load()
	cfg.Auth.JWTSecret = "test-secret"

	bookingSvc := service.NewBookingService(store, store, nopBus{})
	authSvc := service.NewAuthService(store, cfg)

	h := handlers.New(bookingSvc, authSvc, nil, cfg)
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url, token string, body interface{}) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { res.Body.Close() })

	var fields map[string]json.RawMessage
	json.NewDecoder(res.Body).Decode(&fields)
	return res, fields
}

func adminToken(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	res, fields := doJSON(t, http.MethodPost, srv.URL+"/api/login", "", map[string]string{
		"username": "admin@garage.com",
		"password": "0811234567",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("admin login status = %d", res.StatusCode)
	}
	var token string
	json.Unmarshal(fields["token"], &token)
	return token
}

func bookReq(email, phone, date, clock string) map[string]string {
	return map[string]string{
		"first_name":    "Somchai",
		"last_name":     "Jaidee",
		"email":         email,
		"phone":         phone,
		"service_type":  "Brake service",
		"booking_date":  date,
		"booking_time":  clock,
		"license_plate": "AB-1234",
	}
}

// ---------- Tests ----------

func TestBookEndpoint(t *testing.T) {
	srv, _ := newServer(t)

	res, fields := doJSON(t, http.MethodPost, srv.URL+"/api/book", "",
		bookReq("a@x.com", "0800000000", "2024-06-01", "10:00"))
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", res.StatusCode)
	}
	var trackingKey string
	json.Unmarshal(fields["tracking_key"], &trackingKey)
	if trackingKey != "0800000000" {
		t.Errorf("tracking_key = %q", trackingKey)
	}
	if _, ok := fields["booking_id"]; !ok {
		t.Error("response missing booking_id")
	}
}

func TestBookEndpointConflict(t *testing.T) {
	srv, _ := newServer(t)

	res, _ := doJSON(t, http.MethodPost, srv.URL+"/api/book", "",
		bookReq("a@x.com", "0800000000", "2024-06-01", "10:00"))
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("first booking status = %d", res.StatusCode)
	}

	res, _ = doJSON(t, http.MethodPost, srv.URL+"/api/book", "",
		bookReq("b@y.com", "0811111111", "2024-06-01", "10:00"))
	if res.StatusCode != http.StatusConflict {
		t.Errorf("second booking status = %d, want 409", res.StatusCode)
	}
}

func TestBookEndpointBadInput(t *testing.T) {
	srv, _ := newServer(t)

	res, _ := doJSON(t, http.MethodPost, srv.URL+"/api/book", "",
		bookReq("a@x.com", "0800000000", "01/06/2024", "10:00"))
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("bad date status = %d, want 400", res.StatusCode)
	}

	res, _ = doJSON(t, http.MethodPost, srv.URL+"/api/book", "",
		bookReq("a@x.com", "0800000000", "2024-06-01", "25:99"))
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("bad time status = %d, want 400", res.StatusCode)
	}
}

func TestTrackEndpoint(t *testing.T) {
	srv, _ := newServer(t)

	doJSON(t, http.MethodPost, srv.URL+"/api/book", "",
		bookReq("a@x.com", "0800000000", "2024-06-01", "10:00"))
	doJSON(t, http.MethodPost, srv.URL+"/api/book", "",
		bookReq("a@x.com", "0800000000", "2024-06-05", "09:00"))

	res, fields := doJSON(t, http.MethodGet, srv.URL+"/api/track?key=0800000000", "", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	var view domain.BookingView
	json.Unmarshal(fields["data"], &view)
	if view.BookingDate != "2024-06-05" {
		t.Errorf("latest booking date = %q, want 2024-06-05", view.BookingDate)
	}
	if view.FullName != "Somchai Jaidee" || view.Email != "a@x.com" {
		t.Errorf("denormalized customer fields: %+v", view)
	}
}

func TestTrackEndpointErrors(t *testing.T) {
	srv, _ := newServer(t)

	res, _ := doJSON(t, http.MethodGet, srv.URL+"/api/track", "", nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("missing key status = %d, want 400", res.StatusCode)
	}

	res, _ = doJSON(t, http.MethodGet, srv.URL+"/api/track?key=0999999999", "", nil)
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("unknown key status = %d, want 404", res.StatusCode)
	}
}

func TestLoginEndpoint(t *testing.T) {
	srv, _ := newServer(t)

	token := adminToken(t, srv)
	if token == "" {
		t.Fatal("login returned empty token")
	}

	res, _ := doJSON(t, http.MethodPost, srv.URL+"/api/login", "", map[string]string{
		"username": "admin@garage.com",
		"password": "wrong",
	})
	if res.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", res.StatusCode)
	}
}

func TestAdminBookingsRequiresToken(t *testing.T) {
	srv, _ := newServer(t)

	res, _ := doJSON(t, http.MethodGet, srv.URL+"/api/admin/bookings", "", nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", res.StatusCode)
	}

	res, _ = doJSON(t, http.MethodGet, srv.URL+"/api/admin/bookings", "garbage-token", nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", res.StatusCode)
	}

	// A valid token carrying the customer role is rejected the same way.
	customerToken, err := auth.NewAccessToken(2, "somsak@example.com", domain.RoleCustomer, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("mint customer token: %v", err)
	}
	res, _ = doJSON(t, http.MethodGet, srv.URL+"/api/admin/bookings", customerToken, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Errorf("customer token status = %d, want 401", res.StatusCode)
	}
}

func TestAdminListBookings(t *testing.T) {
	srv, _ := newServer(t)
	token := adminToken(t, srv)

	doJSON(t, http.MethodPost, srv.URL+"/api/book", "",
		bookReq("a@x.com", "0800000000", "2024-06-02", "10:00"))
	doJSON(t, http.MethodPost, srv.URL+"/api/book", "",
		bookReq("b@y.com", "0811111111", "2024-06-01", "10:00"))

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/admin/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}

	var views []domain.BookingView
	if err := json.NewDecoder(res.Body).Decode(&views); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(views))
	}
	if views[0].BookingDate != "2024-06-01" {
		t.Errorf("list not ordered ascending: first slot %s", views[0].BookingDate)
	}
}

func TestAdminUpdateStatus(t *testing.T) {
	srv, store := newServer(t)
	token := adminToken(t, srv)

	res, fields := doJSON(t, http.MethodPost, srv.URL+"/api/book", "",
		bookReq("a@x.com", "0800000000", "2024-06-01", "10:00"))
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("booking status = %d", res.StatusCode)
	}
	var id int64
	json.Unmarshal(fields["booking_id"], &id)

	url := fmt.Sprintf("%s/api/admin/update_status/%d", srv.URL, id)
	res, _ = doJSON(t, http.MethodPost, url, token, map[string]string{"status": "in_progress"})
	if res.StatusCode != http.StatusOK {
		t.Errorf("update status = %d, want 200", res.StatusCode)
	}
	if store.bookings[id].Status != domain.StatusInProgress {
		t.Errorf("stored status = %q", store.bookings[id].Status)
	}

	res, _ = doJSON(t, http.MethodPost, url, token, map[string]string{"status": "done"})
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid label status = %d, want 400", res.StatusCode)
	}
	if store.bookings[id].Status != domain.StatusInProgress {
		t.Errorf("invalid label mutated booking: %q", store.bookings[id].Status)
	}

	res, _ = doJSON(t, http.MethodPost, srv.URL+"/api/admin/update_status/9999", token,
		map[string]string{"status": "confirmed"})
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("unknown booking status = %d, want 404", res.StatusCode)
	}

	res, _ = doJSON(t, http.MethodPost, srv.URL+"/api/admin/update_status/abc", token,
		map[string]string{"status": "confirmed"})
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", res.StatusCode)
	}
}

func TestPageShells(t *testing.T) {
	srv, _ := newServer(t)

	for _, path := range []string{"/", "/admin_dashboard"} {
		res, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, res.StatusCode)
		}
		if ct := res.Header.Get("Content-Type"); ct != "text/html; charset=utf-8" {
			t.Errorf("GET %s content-type = %q", path, ct)
		}
	}
}
