package handler

import (
	"net/http" // HTTP status codes
	"strings"  // input normalization

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/studyroom-seat-reservation/internal/clock"      // injected time source
	"github.com/iliyamo/studyroom-seat-reservation/internal/model"      // domain types
	"github.com/iliyamo/studyroom-seat-reservation/internal/repository" // repository layer
	"github.com/iliyamo/studyroom-seat-reservation/internal/service"    // verify code issuing
	"github.com/iliyamo/studyroom-seat-reservation/internal/store"      // sentinel errors
)

// AdminHandler groups the repositories and services behind the
// ADMIN-only endpoints: room and seat management, the verify code
// console, the booking list and the usage reports.
type AdminHandler struct {
	Rooms    *repository.RoomRepo
	Seats    *repository.SeatRepo
	Bookings *repository.BookingRepo
	Users    *repository.UserRepo
	Codes    *service.CodeIssuer
	Clock    clock.Clock
}

func NewAdminHandler(rooms *repository.RoomRepo, seats *repository.SeatRepo, bookings *repository.BookingRepo, users *repository.UserRepo, codes *service.CodeIssuer, clk clock.Clock) *AdminHandler {
	if rooms == nil || seats == nil || bookings == nil || users == nil || codes == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &AdminHandler{Rooms: rooms, Seats: seats, Bookings: bookings, Users: users, Codes: codes, Clock: clk}
}

type roomReq struct {
	Name      string `json:"name"`
	Building  string `json:"building"`
	Floor     int    `json:"floor"`
	Capacity  int    `json:"capacity"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	Is24H     bool   `json:"is_24h"`
	IsActive  *bool  `json:"is_active"`
}

func (r *roomReq) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	r.Building = strings.TrimSpace(r.Building)
	if r.Name == "" || r.Building == "" {
		return "name and building are required"
	}
	if r.Capacity < 0 {
		return "capacity must not be negative"
	}
	if !r.Is24H {
		if r.OpenTime == "" || r.CloseTime == "" {
			return "open_time and close_time are required unless is_24h"
		}
	}
	return ""
}

// ListRooms handles GET /v1/admin/rooms.  Unlike the public listing it
// includes inactive rooms; verify codes stay on the dedicated code
// endpoint.
func (h *AdminHandler) ListRooms(c echo.Context) error {
	rooms, err := h.Rooms.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	type adminRoomView struct {
		roomView
		IsActive bool `json:"is_active"`
	}
	out := make([]adminRoomView, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, adminRoomView{roomView: toRoomView(r), IsActive: r.IsActive})
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": out})
}

// CreateRoom handles POST /v1/admin/rooms.  A fresh verify code is
// issued immediately so the room is usable for check-ins from the
// start.
func (h *AdminHandler) CreateRoom(c echo.Context) error {
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	room := model.StudyRoom{
		Name:      req.Name,
		Building:  req.Building,
		Floor:     req.Floor,
		Capacity:  req.Capacity,
		OpenTime:  req.OpenTime,
		CloseTime: req.CloseTime,
		Is24H:     req.Is24H,
		IsActive:  active,
	}
	ctx := c.Request().Context()
	if err := h.Rooms.Create(ctx, &room); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create room failed"})
	}
	code, err := h.Codes.IssueCode(ctx, room.ID)
	if err != nil {
		// the room exists; the daily rotation will assign a code later
		return c.JSON(http.StatusCreated, echo.Map{"room_id": room.ID})
	}
	return c.JSON(http.StatusCreated, echo.Map{"room_id": room.ID, "verify_code": code})
}

// UpdateRoom handles PUT /v1/admin/rooms/:id.
func (h *AdminHandler) UpdateRoom(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx := c.Request().Context()
	room, err := h.Rooms.ByID(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	room.Name = req.Name
	room.Building = req.Building
	room.Floor = req.Floor
	room.Capacity = req.Capacity
	room.OpenTime = req.OpenTime
	room.CloseTime = req.CloseTime
	room.Is24H = req.Is24H
	if req.IsActive != nil {
		room.IsActive = *req.IsActive
	}
	if err := h.Rooms.Update(ctx, room); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update room failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "updated"})
}

// RoomCode handles GET /v1/admin/rooms/:id/code and returns the current
// verify code with its issue time.
func (h *AdminHandler) RoomCode(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	room, err := h.Rooms.ByID(c.Request().Context(), id)
	if err != nil {
		if err == store.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if room.VerifyCode == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no code issued yet"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"room_id":     room.ID,
		"verify_code": *room.VerifyCode,
		"issued_at":   room.CodeIssuedAt,
	})
}

// RegenerateCode handles POST /v1/admin/rooms/:id/code and issues a new
// verify code on demand, on top of the daily rotation.
func (h *AdminHandler) RegenerateCode(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Rooms.ByID(ctx, id); err != nil {
		if err == store.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	code, err := h.Codes.IssueCode(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue code failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"room_id": id, "verify_code": code})
}
