package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassifiers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checker func(error) bool
		want    bool
	}{
		{"event not found", ErrEventNotFound, IsNotFound, true},
		{"reservation not found", ErrReservationNotFound, IsNotFound, true},
		{"wrapped not found", fmt.Errorf("lookup: %w", ErrEventNotFound), IsNotFound, true},
		{"already booked is conflict", ErrAlreadyBooked, IsConflict, true},
		{"already booked is not not-found", ErrAlreadyBooked, IsNotFound, false},
		{"event full is invalid state", ErrEventFull, IsInvalidState, true},
		{"event started is invalid state", ErrEventStarted, IsInvalidState, true},
		{"not active is invalid state", ErrEventNotActive, IsInvalidState, true},
		{"transient conflict", ErrTransientConflict, IsTransient, true},
		{"transient is not conflict", ErrTransientConflict, IsConflict, false},
		{"invalid title is validation", ErrInvalidTitle, IsValidation, true},
		{"plain error matches nothing", errors.New("boom"), IsNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.checker(tt.err))
		})
	}
}
