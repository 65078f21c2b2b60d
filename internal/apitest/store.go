package apitest

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tourism-app/internal/domain"
)

var (
	errInvalidCredentials = errors.New("invalid credentials")
	errEmailTaken         = errors.New("email already registered")
	errNotFound           = errors.New("not found")
	errResetInvalid       = errors.New("reset token invalid")
)

type account struct {
	user         domain.User
	passwordHash string
	settings     domain.Settings
	favorites    map[string]struct{}
}

// store es el estado en memoria del servicio falso.
type store struct {
	mu           sync.Mutex
	accounts     map[string]*account // por id
	byEmail      map[string]string
	destinations map[string]domain.Destination
	bookings     map[string]bookingRecord
	reviews      []domain.Review
	resetTokens  map[string]string // token -> user id
}

type bookingRecord struct {
	userID  string
	booking domain.Booking
}

func newStore() *store {
	return &store{
		accounts:     make(map[string]*account),
		byEmail:      make(map[string]string),
		destinations: make(map[string]domain.Destination),
		bookings:     make(map[string]bookingRecord),
		resetTokens:  make(map[string]string),
	}
}

func (s *store) createAccount(input domain.SignupInput) (domain.User, error) {
	email := domain.NormalizeEmail(input.Email)
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.MinCost)
	if err != nil {
		return domain.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return domain.User{}, errEmailTaken
	}
	user := domain.User{
		ID:    uuid.NewString(),
		Name:  strings.TrimSpace(input.Name),
		Email: email,
		Phone: strings.TrimSpace(input.Phone),
	}
	s.accounts[user.ID] = &account{
		user:         user,
		passwordHash: string(hash),
		settings:     domain.Settings{Notifications: true, EmailUpdates: true},
		favorites:    make(map[string]struct{}),
	}
	s.byEmail[email] = user.ID
	return user, nil
}

func (s *store) authenticate(email, password string) (domain.User, error) {
	email = domain.NormalizeEmail(email)
	s.mu.Lock()
	id, ok := s.byEmail[email]
	var acc *account
	if ok {
		acc = s.accounts[id]
	}
	s.mu.Unlock()
	if acc == nil {
		return domain.User{}, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.passwordHash), []byte(password)); err != nil {
		return domain.User{}, errInvalidCredentials
	}
	return acc.user, nil
}

func (s *store) issueReset(email string) (string, bool) {
	email = domain.NormalizeEmail(email)
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return "", false
	}
	token := uuid.NewString()
	s.resetTokens[token] = id
	return token, true
}

func (s *store) resetPassword(token, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.resetTokens[token]
	if !ok {
		return errResetInvalid
	}
	delete(s.resetTokens, token)
	acc, ok := s.accounts[id]
	if !ok {
		return errResetInvalid
	}
	acc.passwordHash = string(hash)
	return nil
}

func (s *store) updateProfile(userID string, update domain.ProfileUpdate) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[userID]
	if !ok {
		return domain.User{}, errNotFound
	}
	if update.Email != nil {
		email := domain.NormalizeEmail(*update.Email)
		if other, taken := s.byEmail[email]; taken && other != userID {
			return domain.User{}, errEmailTaken
		}
		delete(s.byEmail, acc.user.Email)
		acc.user.Email = email
		s.byEmail[email] = userID
	}
	if update.Name != nil {
		acc.user.Name = strings.TrimSpace(*update.Name)
	}
	if update.Phone != nil {
		acc.user.Phone = strings.TrimSpace(*update.Phone)
	}
	if update.Avatar != nil {
		acc.user.Avatar = strings.TrimSpace(*update.Avatar)
	}
	return acc.user, nil
}

func (s *store) updateSettings(userID string, update domain.SettingsUpdate) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[userID]
	if !ok {
		return domain.Settings{}, errNotFound
	}
	if update.Notifications != nil {
		acc.settings.Notifications = *update.Notifications
	}
	if update.DarkMode != nil {
		acc.settings.DarkMode = *update.DarkMode
	}
	if update.EmailUpdates != nil {
		acc.settings.EmailUpdates = *update.EmailUpdates
	}
	return acc.settings, nil
}

func (s *store) putDestination(d domain.Destination) domain.Destination {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.destinations[d.ID] = d
	s.mu.Unlock()
	return d
}

func (s *store) listDestinations(match func(domain.Destination) bool) []domain.Destination {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Destination, 0, len(s.destinations))
	for _, d := range s.destinations {
		if match == nil || match(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *store) destination(id string) (domain.Destination, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.destinations[id]
	return d, ok
}

func (s *store) createBooking(userID string, input domain.CreateBookingInput) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.destinations[input.DestinationID]
	if !ok {
		return domain.Booking{}, errNotFound
	}
	b := domain.Booking{
		ID:              uuid.NewString(),
		DestinationID:   d.ID,
		Destination:     &d,
		Date:            input.Date,
		NumberOfGuests:  input.NumberOfGuests,
		TotalPrice:      d.Price * float64(input.NumberOfGuests),
		SpecialRequests: input.SpecialRequests,
		Status:          domain.BookingUpcoming,
	}
	s.bookings[b.ID] = bookingRecord{userID: userID, booking: b}
	return b, nil
}

func (s *store) userBookings(userID string) []domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Booking, 0)
	for _, rec := range s.bookings {
		if rec.userID == userID {
			out = append(out, rec.booking)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *store) booking(userID, id string) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.bookings[id]
	if !ok || rec.userID != userID {
		return domain.Booking{}, errNotFound
	}
	return rec.booking, nil
}

func (s *store) cancelBooking(userID, id string) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.bookings[id]
	if !ok || rec.userID != userID {
		return domain.Booking{}, errNotFound
	}
	rec.booking.Status = domain.BookingCancelled
	s.bookings[id] = rec
	return rec.booking, nil
}

func (s *store) createReview(userID string, input domain.CreateReviewInput) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.destinations[input.DestinationID]; !ok {
		return domain.Review{}, errNotFound
	}
	r := domain.Review{
		ID:            uuid.NewString(),
		DestinationID: input.DestinationID,
		UserID:        userID,
		Rating:        input.Rating,
		Title:         input.Title,
		Content:       input.Content,
		CreatedAt:     time.Now().UTC(),
	}
	s.reviews = append(s.reviews, r)
	return r, nil
}

func (s *store) listReviews(match func(domain.Review) bool) []domain.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Review, 0)
	for _, r := range s.reviews {
		if match(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *store) favorites(userID string) ([]domain.Destination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[userID]
	if !ok {
		return nil, errNotFound
	}
	out := make([]domain.Destination, 0, len(acc.favorites))
	for id := range acc.favorites {
		if d, ok := s.destinations[id]; ok {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *store) setFavorite(userID, destinationID string, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[userID]
	if !ok {
		return errNotFound
	}
	if _, ok := s.destinations[destinationID]; !ok {
		return errNotFound
	}
	if on {
		acc.favorites[destinationID] = struct{}{}
	} else {
		delete(acc.favorites, destinationID)
	}
	return nil
}
