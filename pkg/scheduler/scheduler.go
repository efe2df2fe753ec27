package scheduler

import (
	"context"
	"time"

	"github.com/seojinp/moyeora/pkg/logger"
	"github.com/seojinp/moyeora/pkg/messages"
	"github.com/seojinp/moyeora/pkg/telegram"
	"github.com/seojinp/moyeora/pkg/timegrid"
	"github.com/seojinp/moyeora/pkg/weather"
)

// Service drives the daily weather broadcast.
type Service struct {
	bot        *telegram.Bot
	weather    *weather.Client
	messages   *messages.Service
	chatID     int64 // 0 disables the broadcast
	city       string
	logger     *logger.Logger
	stopChan   chan struct{}
	lastSentOn string // YYYY-MM-DD of the last broadcast
}

// New creates a scheduler service.
func New(bot *telegram.Bot, w *weather.Client, m *messages.Service, chatID int64, city string) *Service {
	return &Service{
		bot:      bot,
		weather:  w,
		messages: m,
		chatID:   chatID,
		city:     city,
		logger:   logger.New("scheduler"),
		stopChan: make(chan struct{}),
	}
}

// Start starts the scheduler loops.
func (s *Service) Start() {
	if s.chatID == 0 || !s.weather.Enabled() {
		s.logger.Warn("Morning weather broadcast disabled (channel or API key not configured)")
		return
	}

	s.logger.Info("Starting morning weather broadcast")
	go s.runMorningWeather()
}

// Stop stops the scheduler loops.
func (s *Service) Stop() {
	s.logger.Info("Stopping scheduler")
	close(s.stopChan)
}

// runMorningWeather sends the weather report once per day shortly after
// 07:00 KST.
func (s *Service) runMorningWeather() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.maybeBroadcast(time.Now())
		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) maybeBroadcast(now time.Time) {
	day := timegrid.Today(now)
	hour, minute := timegrid.ClockInKST(now)
	if hour != 7 || minute >= 5 || s.lastSentOn == day {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report, err := s.weather.Current(ctx, s.city)
	if err != nil {
		s.logger.Error("Morning weather fetch failed: %v", err)
		return
	}

	if _, err := s.bot.SendMessage(s.chatID, s.messages.MorningWeather(report.String())); err != nil {
		s.logger.Error("Morning weather broadcast failed: %v", err)
		return
	}

	s.lastSentOn = day
	s.logger.Info("Sent morning weather broadcast for %s", day)
}
