package validator

import (
	"io"
	"testing"
	"time"

	"fleetbook/pkg/logger"
	"fleetbook/pkg/model"
)

func newTestValidator() *BookingValidator {
	return NewBookingValidator(logger.New(logger.Config{
		Level:  logger.ERROR,
		Format: logger.TEXT,
		Output: io.Discard,
	}))
}

func TestValidateRequest(t *testing.T) {
	v := newTestValidator()
	start := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	valid := &model.BookingRequest{
		VehicleID: "64a000000000000000000001",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 3),
	}
	if err := v.ValidateRequest(valid); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := []struct {
		name string
		req  model.BookingRequest
	}{
		{"missing vehicle id", model.BookingRequest{StartDate: start, EndDate: start.AddDate(0, 0, 1)}},
		{"malformed vehicle id", model.BookingRequest{VehicleID: "abc", StartDate: start, EndDate: start.AddDate(0, 0, 1)}},
		{"missing dates", model.BookingRequest{VehicleID: valid.VehicleID}},
		{"end equals start", model.BookingRequest{VehicleID: valid.VehicleID, StartDate: start, EndDate: start}},
		{"end before start", model.BookingRequest{VehicleID: valid.VehicleID, StartDate: start, EndDate: start.AddDate(0, 0, -2)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := v.ValidateRequest(&tc.req); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestValidateBooking(t *testing.T) {
	v := newTestValidator()
	start := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	valid := func() *model.Booking {
		return &model.Booking{
			UserID:      "64c000000000000000000001",
			VehicleID:   "64a000000000000000000001",
			PlateNumber: "34ABC123",
			StartDate:   start,
			EndDate:     start.AddDate(0, 0, 3),
			TotalPrice:  300,
			Status:      model.StatusPending,
		}
	}

	if err := v.Validate(valid()); err != nil {
		t.Fatalf("valid booking rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*model.Booking)
	}{
		{"lowercase plate", func(b *model.Booking) { b.PlateNumber = "34abc123" }},
		{"plate with spaces", func(b *model.Booking) { b.PlateNumber = "34 ABC 123" }},
		{"plate too short", func(b *model.Booking) { b.PlateNumber = "A" }},
		{"zero price", func(b *model.Booking) { b.TotalPrice = 0 }},
		{"unknown status", func(b *model.Booking) { b.Status = "done" }},
		{"missing user", func(b *model.Booking) { b.UserID = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := valid()
			tc.mutate(b)
			if err := v.Validate(b); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestValidationErrorMessages(t *testing.T) {
	v := newTestValidator()

	err := v.ValidateRequest(&model.BookingRequest{})
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}

	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("err type = %T, want ValidationErrors", err)
	}
	if len(verrs) == 0 {
		t.Fatal("expected at least one field error")
	}
	for _, fe := range verrs {
		if fe.Field == "" || fe.Message == "" {
			t.Errorf("incomplete field error: %+v", fe)
		}
	}
}
