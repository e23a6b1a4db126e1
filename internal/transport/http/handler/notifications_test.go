package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/contact-verifier/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) HandleRaw(ctx context.Context, raw []byte) error {
	return m.Called(ctx, string(raw)).Error(0)
}

func TestReceive_Applied(t *testing.T) {
	d := new(mockDispatcher)
	body := `{"action":"setDoNotDisturb","data":{"customerId":"c1"}}`
	d.On("HandleRaw", mock.Anything, body).Return(nil)

	rr := post(t, http.HandlerFunc(NewNotificationHandler(d).Receive), "/notifications", body)

	assert.Equal(t, http.StatusAccepted, rr.Code)
	d.AssertExpectations(t)
}

func TestReceive_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"decode error", &domain.DecodeError{Action: "sendSms", Err: domain.ErrUnknownAction}, http.StatusBadRequest},
		{"customer not found", domain.ErrNotFound, http.StatusNotFound},
		{"store failure", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := new(mockDispatcher)
			d.On("HandleRaw", mock.Anything, mock.Anything).Return(tt.err)

			rr := post(t, http.HandlerFunc(NewNotificationHandler(d).Receive), "/notifications", `{}`)

			assert.Equal(t, tt.want, rr.Code)
		})
	}
}
