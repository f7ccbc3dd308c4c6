package handler

import (
	"net/http" // HTTP status codes
	"strings"  // query parameter normalization

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/studyroom-seat-reservation/internal/model"      // domain types
	"github.com/iliyamo/studyroom-seat-reservation/internal/repository" // repository layer
	"github.com/iliyamo/studyroom-seat-reservation/internal/store"      // sentinel errors
)

// PublicHandler serves the unauthenticated browsing endpoints: rooms,
// their seats and the list of buildings.  Responses never include the
// room verify code, which is why rooms are mapped through roomView
// instead of being serialized directly.
type PublicHandler struct {
	Rooms *repository.RoomRepo
	Seats *repository.SeatRepo
}

func NewPublicHandler(rooms *repository.RoomRepo, seats *repository.SeatRepo) *PublicHandler {
	if rooms == nil || seats == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Rooms: rooms, Seats: seats}
}

// roomView is the public projection of a study room.
type roomView struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	Building  string `json:"building"`
	Floor     int    `json:"floor"`
	Capacity  int    `json:"capacity"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	Is24H     bool   `json:"is_24h"`
}

func toRoomView(r model.StudyRoom) roomView {
	return roomView{
		ID:        r.ID,
		Name:      r.Name,
		Building:  r.Building,
		Floor:     r.Floor,
		Capacity:  r.Capacity,
		OpenTime:  r.OpenTime,
		CloseTime: r.CloseTime,
		Is24H:     r.Is24H,
	}
}

type seatView struct {
	ID             uint64 `json:"id"`
	RoomID         uint64 `json:"room_id"`
	SeatNumber     string `json:"seat_number"`
	HasPowerOutlet bool   `json:"has_power_outlet"`
}

func toSeatView(s model.Seat) seatView {
	return seatView{ID: s.ID, RoomID: s.RoomID, SeatNumber: s.SeatNumber, HasPowerOutlet: s.HasPowerOutlet}
}

// ListRooms handles GET /v1/rooms.  Only active rooms are listed; an
// optional ?building= query narrows the result.
func (h *PublicHandler) ListRooms(c echo.Context) error {
	rooms, err := h.Rooms.ListActive(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	building := strings.TrimSpace(c.QueryParam("building"))
	out := make([]roomView, 0, len(rooms))
	for _, r := range rooms {
		if building != "" && !strings.EqualFold(r.Building, building) {
			continue
		}
		out = append(out, toRoomView(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": out})
}

// GetRoom handles GET /v1/rooms/:id and returns the room together with
// its active seats.
func (h *PublicHandler) GetRoom(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	ctx := c.Request().Context()
	room, err := h.Rooms.ByID(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !room.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	}
	seats, err := h.Seats.ListByRoom(ctx, id, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	seatViews := make([]seatView, 0, len(seats))
	for _, s := range seats {
		seatViews = append(seatViews, toSeatView(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"room": toRoomView(room), "seats": seatViews})
}

// ListRoomSeats handles GET /v1/rooms/:id/seats.  Only active seats
// are listed; ?power=true keeps just the seats with a power outlet.
func (h *PublicHandler) ListRoomSeats(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	ctx := c.Request().Context()
	room, err := h.Rooms.ByID(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !room.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	}
	seats, err := h.Seats.ListByRoom(ctx, id, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	powerOnly := c.QueryParam("power") == "true"
	out := make([]seatView, 0, len(seats))
	for _, s := range seats {
		if powerOnly && !s.HasPowerOutlet {
			continue
		}
		out = append(out, toSeatView(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"seats": out})
}

// ListBuildings handles GET /v1/buildings and returns the distinct
// building names having at least one active room.
func (h *PublicHandler) ListBuildings(c echo.Context) error {
	buildings, err := h.Rooms.Buildings(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"buildings": buildings})
}
