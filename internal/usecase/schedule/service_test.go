package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type stubStarter struct {
	started []int64
	failFor map[int64]error
}

func (s *stubStarter) Start(_ context.Context, chatID int64, _ string) error {
	s.started = append(s.started, chatID)
	if s.failFor != nil {
		return s.failFor[chatID]
	}
	return nil
}

func TestNewServiceRejectsBadTime(t *testing.T) {
	_, err := NewService(&stubStarter{}, nil, "25:99", time.UTC, zerolog.Nop())
	if !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("ожидали ErrInvalidTime, получили %v", err)
	}
}

func TestShouldFireOncePerDate(t *testing.T) {
	service, err := NewService(&stubStarter{}, []int64{1}, "08:00", time.UTC, zerolog.Nop())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	at := time.Date(2025, 3, 10, 8, 0, 30, 0, time.UTC)
	if !service.shouldFire(at) {
		t.Fatal("в настроенную минуту триггер должен сработать")
	}
	service.fire(context.Background(), at)

	if service.shouldFire(at.Add(20 * time.Second)) {
		t.Fatal("в ту же дату повторного срабатывания быть не должно")
	}
	if !service.shouldFire(at.AddDate(0, 0, 1)) {
		t.Fatal("на следующий день триггер снова активен")
	}
}

func TestShouldFireWrongMinute(t *testing.T) {
	service, err := NewService(&stubStarter{}, []int64{1}, "08:00", time.UTC, zerolog.Nop())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if service.shouldFire(time.Date(2025, 3, 10, 8, 1, 0, 0, time.UTC)) {
		t.Fatal("вне настроенной минуты триггер молчит")
	}
}

func TestFireIsolatesFailures(t *testing.T) {
	starter := &stubStarter{failFor: map[int64]error{2: errors.New("chat blocked")}}
	service, err := NewService(starter, []int64{1, 2, 3}, "08:00", time.UTC, zerolog.Nop())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	service.fire(context.Background(), time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))

	if len(starter.started) != 3 {
		t.Fatalf("сбой одного получателя не должен прерывать рассылку, запусков %d", len(starter.started))
	}
}
