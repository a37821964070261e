package gateway

import (
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorBookingDates(t *testing.T) {
	now := time.Date(2030, 1, 10, 12, 0, 0, 0, time.Local)
	v := NewValidator()
	v.now = func() time.Time { return now }

	at := func(d time.Duration) *models.LocalDateTime {
		ldt := models.NewLocalDateTime(now.Add(d))
		return &ldt
	}

	tests := []struct {
		name    string
		req     bookingRequest
		wantErr string
	}{
		{"valid", bookingRequest{ItemID: 1, Start: at(time.Hour), End: at(2 * time.Hour)}, ""},
		{"start now", bookingRequest{ItemID: 1, Start: at(0), End: at(time.Hour)}, ""},
		{"missing item", bookingRequest{Start: at(time.Hour), End: at(2 * time.Hour)}, "itemId is required"},
		{"missing start", bookingRequest{ItemID: 1, End: at(time.Hour)}, "start is required"},
		{"missing end", bookingRequest{ItemID: 1, Start: at(time.Hour)}, "end is required"},
		{"start in past", bookingRequest{ItemID: 1, Start: at(-time.Hour), End: at(time.Hour)}, "start must not be in the past"},
		{"end in past", bookingRequest{ItemID: 1, Start: at(-2 * time.Hour), End: at(-time.Hour)}, "end must be in the future"},
		{"end before start", bookingRequest{ItemID: 1, Start: at(2 * time.Hour), End: at(time.Hour)}, "start must be before end"},
		{"equal bounds", bookingRequest{ItemID: 1, Start: at(time.Hour), End: at(time.Hour)}, "start must be before end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(&tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidatorShapes(t *testing.T) {
	v := NewValidator()
	yes := true
	bad := "not-an-email"
	good := "a@b.io"

	tests := []struct {
		name    string
		req     any
		wantErr string
	}{
		{"user ok", &userCreateRequest{Name: "Ann", Email: "ann@example.com"}, ""},
		{"user blank name", &userCreateRequest{Name: "  ", Email: "ann@example.com"}, "name must not be blank"},
		{"user bad email", &userCreateRequest{Name: "Ann", Email: "ann"}, "email must be a valid email"},
		{"user missing email", &userCreateRequest{Name: "Ann"}, "email is required"},
		{"patch empty", &userUpdateRequest{}, ""},
		{"patch good email", &userUpdateRequest{Email: &good}, ""},
		{"patch bad email", &userUpdateRequest{Email: &bad}, "email must be a valid email"},
		{"item ok", &itemCreateRequest{Name: "Drill", Description: "Cordless", Available: &yes}, ""},
		{"item no flag", &itemCreateRequest{Name: "Drill", Description: "Cordless"}, "available is required"},
		{"item blank description", &itemCreateRequest{Name: "Drill", Available: &yes}, "description must not be blank"},
		{"comment blank", &commentRequest{Text: ""}, "text must not be blank"},
		{"request ok", &itemRequestRequest{Description: "Need a ladder"}, ""},
		{"request blank", &itemRequestRequest{Description: "\t"}, "description must not be blank"},
		{"list ok", &listQuery{State: "current", Size: 10}, ""},
		{"list empty state", &listQuery{Size: 1}, ""},
		{"list unknown state", &listQuery{State: "UNSUPPORTED_STATUS", Size: 10}, "Unknown state: UNSUPPORTED_STATUS"},
		{"list negative from", &listQuery{From: -1, Size: 10}, "from must be at least 0"},
		{"list zero size", &listQuery{Size: 0}, "size must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
