package service

import (
	"context"
	"crypto/rand"

	"github.com/iliyamo/studyroom-seat-reservation/internal/clock"
	"github.com/iliyamo/studyroom-seat-reservation/internal/store"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// CodeIssuer generates and rotates per-room check-in verification
// codes.  Issuing replaces the stored code atomically, so the previous
// code stops working the instant the new one lands.
type CodeIssuer struct {
	rooms store.RoomStore
	clk   clock.Clock
}

func NewCodeIssuer(rooms store.RoomStore, clk clock.Clock) *CodeIssuer {
	if rooms == nil || clk == nil {
		panic("nil dependency passed to NewCodeIssuer")
	}
	return &CodeIssuer{rooms: rooms, clk: clk}
}

// IssueCode stores a fresh 6-character A-Z0-9 code for the room and
// returns it.
func (c *CodeIssuer) IssueCode(ctx context.Context, roomID uint64) (string, error) {
	code, err := randomCode(codeLength)
	if err != nil {
		return "", err
	}
	if err := c.rooms.UpdateVerifyCode(ctx, roomID, code, c.clk.Now()); err != nil {
		return "", err
	}
	return code, nil
}

// randomCode draws n characters from the code alphabet using
// crypto/rand.  Rejection sampling keeps the distribution uniform.
func randomCode(n int) (string, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			// 252 is the largest multiple of 36 below 256
			if b >= 252 {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
