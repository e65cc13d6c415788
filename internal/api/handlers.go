package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hotelops/internal/models"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type createBookingRequest struct {
	RoomID      int64  `json:"room_id"`
	GuestName   string `json:"guest_name"`
	GuestEmail  string `json:"guest_email"`
	Phone       string `json:"phone"`
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	Guests      int    `json:"guests"`
	TotalAmount string `json:"total_amount"`
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		bookings, err := s.bookings.ListBookings(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})

	case http.MethodPost:
		var body createBookingRequest
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		checkIn, err := time.Parse(dateLayout, body.CheckIn)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid check_in; expected YYYY-MM-DD")
			return
		}
		checkOut, err := time.Parse(dateLayout, body.CheckOut)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid check_out; expected YYYY-MM-DD")
			return
		}
		total, err := decimal.NewFromString(body.TotalAmount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid total_amount")
			return
		}

		booking := &models.Booking{
			RoomID:      body.RoomID,
			GuestName:   strings.TrimSpace(body.GuestName),
			GuestEmail:  strings.TrimSpace(body.GuestEmail),
			Phone:       strings.TrimSpace(body.Phone),
			CheckIn:     checkIn,
			CheckOut:    checkOut,
			Guests:      body.Guests,
			TotalAmount: total,
		}
		if booking.GuestName == "" {
			writeError(w, http.StatusBadRequest, "guest_name is required")
			return
		}

		if err := s.bookings.CreateBooking(r.Context(), booking); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, booking)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	id, action, ok := parseIDAndAction(r.URL.Path, "/api/v1/bookings/")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid booking path")
		return
	}

	if action == "" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		booking, err := s.bookings.GetBooking(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor := ActorFromContext(r.Context())

	var (
		booking *models.Booking
		err     error
	)
	switch action {
	case "confirm":
		booking, err = s.bookings.ConfirmBooking(r.Context(), id, actor)
	case "cancel":
		booking, err = s.bookings.CancelBooking(r.Context(), id, actor)
	case "payment":
		booking, err = s.bookings.RecordPayment(r.Context(), id, actor)
	case "discount":
		var body struct {
			Type   string `json:"type"`
			Value  string `json:"value"`
			Reason string `json:"reason"`
		}
		if decodeErr := decodeBody(r, &body); decodeErr != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		value, parseErr := decimal.NewFromString(body.Value)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid discount value")
			return
		}
		booking, err = s.bookings.ApplyDiscount(r.Context(), id, models.Discount{
			Type:   body.Type,
			Value:  value,
			Reason: body.Reason,
		}, actor)
	case "review-invite":
		booking, err = s.bookings.SendReviewInvitation(r.Context(), id, actor)
	default:
		writeError(w, http.StatusNotFound, "unknown booking action")
		return
	}

	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

type createRoomRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
}

func (s *HTTPServer) handleRooms(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rooms, err := s.rooms.ListRooms(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})

	case http.MethodPost:
		var body createRoomRequest
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		price, err := decimal.NewFromString(body.Price)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid price")
			return
		}

		room := &models.Room{
			Name:     strings.TrimSpace(body.Name),
			Category: body.Category,
			Price:    price,
		}
		if err := s.rooms.CreateRoom(r.Context(), room); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, room)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleRoomByID(w http.ResponseWriter, r *http.Request) {
	id, action, ok := parseIDAndAction(r.URL.Path, "/api/v1/rooms/")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid room path")
		return
	}

	if action == "" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		room, err := s.rooms.GetRoom(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, room)
		return
	}

	if action == "bookings" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		bookings, err := s.bookings.ListBookingsByRoom(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor := ActorFromContext(r.Context())

	var (
		room *models.Room
		err  error
	)
	switch action {
	case "checkin":
		room, err = s.rooms.CheckIn(r.Context(), id, actor)
	case "checkout":
		var body struct {
			BookingID int64 `json:"booking_id"`
		}
		// Body is optional; a checkout without a booking reference is legal.
		_ = decodeBody(r, &body)
		room, err = s.rooms.Checkout(r.Context(), id, body.BookingID, actor)
	case "ready":
		room, err = s.rooms.MarkReady(r.Context(), id, actor)
	default:
		writeError(w, http.StatusNotFound, "unknown room action")
		return
	}

	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *HTTPServer) handleRevenue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	period := strings.TrimSpace(r.URL.Query().Get("period"))
	if period == "" {
		period = models.PeriodMonthly
	}

	report, err := s.revenue.GetRevenue(r.Context(), period, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type revenueEntryRequest struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

func (s *HTTPServer) handleRevenueEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body revenueEntryRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	date, err := parseOptionalDate(body.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date; expected YYYY-MM-DD")
		return
	}

	entry, err := s.revenue.AddManualRevenue(r.Context(), body.Type, amount, body.Description, date, ActorFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

type costEntryRequest struct {
	Category      string `json:"category"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
	Date          string `json:"date"`
	PaymentMethod string `json:"payment_method"`
}

func (s *HTTPServer) handleCosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body costEntryRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	date, err := parseOptionalDate(body.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date; expected YYYY-MM-DD")
		return
	}

	entry, err := s.revenue.AddManualCost(r.Context(), body.Category, amount, body.Description, date, body.PaymentMethod, ActorFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *HTTPServer) handleBufferHours(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		hours, err := s.settings.GetBufferHours(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "settings unavailable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"buffer_hours": hours})

	case http.MethodPut:
		var body struct {
			BufferHours int `json:"buffer_hours"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.settings.SetBufferHours(r.Context(), body.BufferHours); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"buffer_hours": body.BufferHours})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleRevenueExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "exports are not configured")
		return
	}

	period := strings.TrimSpace(r.URL.Query().Get("period"))
	if period == "" {
		period = models.PeriodMonthly
	}

	report, err := s.revenue.GetRevenue(r.Context(), period, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	filePath, err := s.exporter.ExportRevenueReport(r.Context(), report)
	if err != nil {
		s.logger.Error().Err(err).Msg("revenue export error")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=revenue.xlsx")
	http.ServeFile(w, r, filePath)
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func parseOptionalDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, raw)
}

// parseIDAndAction splits "/prefix/{id}" or "/prefix/{id}/{action}".
func parseIDAndAction(path, prefix string) (int64, string, bool) {
	if !strings.HasPrefix(path, prefix) {
		return 0, "", false
	}
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || len(parts) > 2 {
		return 0, "", false
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, "", false
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}
	return id, action, true
}
