// Package messages renders all user-facing text. Flavor lines go through
// the OpenAI persona when configured; status boards and lists are formatted
// deterministically so the vote state always reads exactly as stored.
package messages

import (
	"fmt"
	"strings"

	"github.com/seojinp/moyeora/pkg/logger"
	"github.com/seojinp/moyeora/pkg/models"
	"github.com/seojinp/moyeora/pkg/openai"
	"github.com/seojinp/moyeora/pkg/roster"
)

// Service provides message rendering.
type Service struct {
	openaiClient *openai.Client // nil when persona generation is disabled
	roster       *roster.Roster
	logger       *logger.Logger
}

// New creates a message service. openaiClient may be nil, in which case
// every message uses its canned fallback.
func New(openaiClient *openai.Client, r *roster.Roster) *Service {
	return &Service{
		openaiClient: openaiClient,
		roster:       r,
		logger:       logger.New("messages"),
	}
}

// generate asks the persona model for a message, falling back to the given
// canned text on any failure.
func (s *Service) generate(intent string, contextData map[string]interface{}, fallback string) string {
	if s.openaiClient == nil {
		return fallback
	}
	msg, err := s.openaiClient.GenerateChatMessage(intent, contextData)
	if err != nil {
		s.logger.Error("Failed to generate %s message: %v", intent, err)
		return fallback
	}
	return msg
}

// Welcome greets a chat that just started the bot.
func (s *Service) Welcome() string {
	return s.generate("welcome", map[string]interface{}{
		"purpose": "help a group of friends find a meeting time everyone can make",
	}, "왔나. 바쁜 시간은 /busy로 넣고, 모일 시간은 /go로 잡아라.")
}

// LunchPick announces the picked menu.
func (s *Service) LunchPick(menu string) string {
	return s.generate("lunch_pick", map[string]interface{}{
		"menu": menu,
	}, fmt.Sprintf("점심은 이거 묵어라: %s\n고민은 거기서 끝내라.", menu))
}

// MorningWeather wraps the daily weather broadcast.
func (s *Service) MorningWeather(report string) string {
	return "할매 아침 날씨다\n" + report
}

// WeatherUnavailable is sent when the weather lookup fails.
func (s *Service) WeatherUnavailable() string {
	return s.generate("weather_unavailable", map[string]interface{}{},
		"날씨가 오늘 영 말을 안 듣는다. 도시명 바꿔보던지, 쪼매 있다가 다시 해봐라.")
}

// NotMember rejects a caller who is not on the roster.
func (s *Service) NotMember() string {
	names := make([]string, 0)
	for _, m := range s.roster.Members() {
		names = append(names, m.Name)
	}
	return fmt.Sprintf("니는 등록된 멤버가 아니라서 못 한다. (%s만 된다)", strings.Join(names, "/"))
}

// BusyItem renders one busy interval as a list line.
func (s *Service) BusyItem(b models.BusyInterval) string {
	reason := ""
	if b.Reason != "" {
		reason = fmt.Sprintf(" (%s)", b.Reason)
	}
	return fmt.Sprintf("- [%s] %s %s %s~%s%s", b.ID, s.roster.Name(b.OwnerKey), b.Date, b.Start, b.End, reason)
}

// BusyList renders a titled busy-interval list. filterKey empty means the
// whole group.
func (s *Service) BusyList(filterKey string, items []models.BusyInterval) string {
	if len(items) == 0 {
		if filterKey != "" {
			return fmt.Sprintf("없다. %s는 그날그날 비어있네.", s.roster.Name(filterKey))
		}
		return "없다. 아무도 안 막혀있네."
	}

	title := "전체 못 되는 시간"
	if filterKey != "" {
		title = fmt.Sprintf("%s 못 되는 시간", s.roster.Name(filterKey))
	}

	lines := []string{title}
	for _, b := range items {
		lines = append(lines, s.BusyItem(b))
	}
	return strings.Join(lines, "\n")
}

// NoCandidates reports a search that found nothing.
func (s *Service) NoCandidates(date, from, to string, durationMin, stepMin int) string {
	return fmt.Sprintf("없다.\n- 날짜: %s\n- 범위: %s~%s\n- 필요시간: %d분\n- 간격: %d분\n그날은 각자 바쁜가 보다.",
		date, from, to, durationMin, stepMin)
}

// ProposalBoard renders the proposal status message: the window, every
// party's response, live conflicts, and the outcome line.
func (s *Service) ProposalBoard(p *models.Proposal, conflicts map[string][]models.BusyInterval) string {
	var lines []string
	lines = append(lines, "할매가 시간 하나 딱 잡아준다")
	lines = append(lines, fmt.Sprintf("- 날짜: %s", p.Date))
	lines = append(lines, fmt.Sprintf("- 시간: %s~%s (%d분)", p.Start, p.End, p.DurationMinutes))
	lines = append(lines, "")
	lines = append(lines, "응답 상태")

	for _, k := range s.roster.Keys() {
		st := p.Responses[k]
		var stText string
		switch st {
		case models.ResponseAccept:
			stText = "오케이(간다)"
		case models.ResponseDecline:
			stText = "못 간다"
		default:
			stText = "아직이다"
		}

		warn := ""
		if cs := conflicts[k]; len(cs) > 0 {
			parts := make([]string, len(cs))
			for i, b := range cs {
				parts[i] = fmt.Sprintf("%s~%s", b.Start, b.End)
				if b.Reason != "" {
					parts[i] += fmt.Sprintf("(%s)", b.Reason)
				}
			}
			warn = " · 겹치는 거: " + strings.Join(parts, ", ")
		}

		lines = append(lines, fmt.Sprintf("- %s: %s%s", s.roster.Name(k), stText, warn))
	}

	lines = append(lines, "")
	switch p.Status {
	case models.StatusConfirmed:
		lines = append(lines, "확정이다. 그 시간에 딱 모이라.")
	case models.StatusCancelled:
		lines = append(lines, "안 된다. 날짜나 시간 다시 잡아라.")
	default:
		lines = append(lines, "아직 답 안 한 사람 있다. 얼른 눌러라.")
	}

	return strings.Join(lines, "\n")
}
