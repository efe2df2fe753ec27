package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/seojinp/moyeora/pkg/availability"
	"github.com/seojinp/moyeora/pkg/busy"
	"github.com/seojinp/moyeora/pkg/config"
	"github.com/seojinp/moyeora/pkg/gateway"
	"github.com/seojinp/moyeora/pkg/logger"
	"github.com/seojinp/moyeora/pkg/lunch"
	"github.com/seojinp/moyeora/pkg/messages"
	"github.com/seojinp/moyeora/pkg/models"
	"github.com/seojinp/moyeora/pkg/openai"
	"github.com/seojinp/moyeora/pkg/proposal"
	"github.com/seojinp/moyeora/pkg/roster"
	"github.com/seojinp/moyeora/pkg/scheduler"
	"github.com/seojinp/moyeora/pkg/storage"
	"github.com/seojinp/moyeora/pkg/telegram"
	"github.com/seojinp/moyeora/pkg/timegrid"
	"github.com/seojinp/moyeora/pkg/weather"
)

const (
	maxDurationMinutes = 600
	maxStepMinutes     = 180
	defaultStepMinutes = 30
	maxCandidates      = 20
)

func main() {
	log := logger.Global
	log.Info("Starting moyeora bot...")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	members, err := roster.Parse(cfg.RosterSpec)
	if err != nil {
		log.Error("Failed to parse roster: %v", err)
		os.Exit(1)
	}

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		log.Error("Failed to initialize storage: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	store.StartGCRoutine(10 * time.Minute)

	gw := gateway.New(store)
	busyService := busy.New(gw, members)
	finder := availability.New(gw, members)
	engine := proposal.New(gw, members)

	var openaiClient *openai.Client
	if cfg.OpenAIAPIKey != "" {
		openaiClient = openai.New(cfg.OpenAIAPIKey, cfg.OpenAIAPIBase, cfg.OpenAIModel)
	}
	messageService := messages.New(openaiClient, members)
	weatherClient := weather.New(cfg.WeatherAPIKey, cfg.WeatherCity, cfg.WeatherUnits, cfg.WeatherLang)
	lunchPicker := lunch.New(cfg.LunchMenu)

	bot, err := telegram.New(cfg.BotToken)
	if err != nil {
		log.Error("Failed to initialize Telegram bot: %v", err)
		os.Exit(1)
	}

	sched := scheduler.New(bot, weatherClient, messageService, cfg.WeatherChannelID, cfg.WeatherCity)
	sched.Start()

	commandHandlers := map[string]telegram.CommandHandler{
		"start": func(message *tgbotapi.Message) {
			bot.SendMessage(message.Chat.ID, messageService.Welcome())
		},
		"lunch": func(message *tgbotapi.Message) {
			menu := lunchPicker.Pick()
			if menu == "" {
				bot.SendMessage(message.Chat.ID, "메뉴판이 비었다. LUNCH_MENU부터 채워라.")
				return
			}
			bot.SendMessage(message.Chat.ID, messageService.LunchPick(menu))
		},
		"weather": func(message *tgbotapi.Message) {
			chatID := message.Chat.ID
			if !weatherClient.Enabled() {
				bot.SendMessage(chatID, "날씨 기능이 꺼져있다. WEATHER_API_KEY부터 넣어라.")
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			city := strings.TrimSpace(message.CommandArguments())
			report, err := weatherClient.Current(ctx, city)
			if err != nil {
				log.Error("Weather lookup failed: %v", err)
				bot.SendMessage(chatID, messageService.WeatherUnavailable())
				return
			}
			bot.SendMessage(chatID, "날씨 궁금했나?\n"+report.String())
		},
		"busy": func(message *tgbotapi.Message) {
			handleBusy(bot, busyService, messageService, members, message)
		},
		"go": func(message *tgbotapi.Message) {
			handleGo(bot, finder, engine, messageService, members, message)
		},
	}

	callbackHandlers := map[string]telegram.CallbackHandler{
		"go:": func(callback *tgbotapi.CallbackQuery) {
			handleVote(bot, engine, messageService, members, callback)
		},
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("Shutting down...")
		sched.Stop()
		store.Close()
		os.Exit(0)
	}()

	log.Info("Bot is now running. Press CTRL-C to exit.")
	if err := bot.Start(commandHandlers, callbackHandlers, nil); err != nil {
		log.Error("Error running bot: %v", err)
		os.Exit(1)
	}
}

// handleBusy dispatches the /busy subcommands:
//
//	/busy add <date> <start> <end> [reason...]
//	/busy list [all|<key>]
//	/busy remove <id>
//	/busy clear
func handleBusy(bot *telegram.Bot, busyService *busy.Service, messageService *messages.Service, members *roster.Roster, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	callerKey, registered := members.KeyForTelegramID(message.From.ID)
	args := strings.Fields(message.CommandArguments())

	if len(args) == 0 {
		bot.SendMessage(chatID, "이래 쓰는 거다: /busy add|list|remove|clear")
		return
	}

	switch args[0] {
	case "add":
		if !registered {
			bot.SendMessage(chatID, messageService.NotMember())
			return
		}
		if len(args) < 4 {
			bot.SendMessage(chatID, "이래 쓰는 거다: /busy add 2024-01-01 18:00 19:00 [사유]")
			return
		}

		date, err := timegrid.ParseDay(args[1], time.Now())
		if err != nil {
			bot.SendMessage(chatID, "날짜가 좀 이상하다. '오늘', '내일', 'YYYY-MM-DD' 중 하나로 넣어라.")
			return
		}
		reason := strings.Join(args[4:], " ")

		item, err := busyService.Add(callerKey, date, args[2], args[3], reason)
		if err != nil {
			bot.SendMessage(chatID, busyErrorReply(err))
			return
		}
		bot.SendMessage(chatID, "됐다. 박아놨다.\n"+messageService.BusyItem(*item))

	case "list":
		filterKey := callerKey
		if len(args) > 1 {
			if args[1] == "all" {
				filterKey = ""
			} else {
				filterKey = args[1]
			}
		}

		items, err := busyService.List(filterKey)
		if err != nil {
			bot.SendMessage(chatID, busyErrorReply(err))
			return
		}
		bot.SendMessage(chatID, messageService.BusyList(filterKey, items))

	case "remove":
		if !registered {
			bot.SendMessage(chatID, "니는 등록된 멤버가 아니라서 삭제도 못 한다.")
			return
		}
		if len(args) < 2 {
			bot.SendMessage(chatID, "지울 번호를 넣어라. /busy list로 한번 보고 와라.")
			return
		}

		item, err := busyService.Remove(callerKey, args[1])
		if err != nil {
			bot.SendMessage(chatID, busyErrorReply(err))
			return
		}
		bot.SendMessage(chatID, "지웠다.\n"+messageService.BusyItem(*item))

	case "clear":
		if !registered {
			bot.SendMessage(chatID, "니는 등록된 멤버가 아니라서 싹 비우는 것도 못 한다.")
			return
		}

		count, err := busyService.Clear(callerKey)
		if err != nil {
			bot.SendMessage(chatID, busyErrorReply(err))
			return
		}
		bot.SendMessage(chatID, fmt.Sprintf("%s 스케줄 %d개, 할매가 싹 비워놨다.", members.Name(callerKey), count))

	default:
		bot.SendMessage(chatID, "이래 쓰는 거다: /busy add|list|remove|clear")
	}
}

// handleGo runs an availability search and opens a proposal for the first
// feasible window:
//
//	/go <day> <from> <to> <duration> [step]
func handleGo(bot *telegram.Bot, finder *availability.Finder, engine *proposal.Engine, messageService *messages.Service, members *roster.Roster, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	args := strings.Fields(message.CommandArguments())

	if len(args) < 4 {
		bot.SendMessage(chatID, "이래 쓰는 거다: /go 오늘 18:00 22:00 60 [30]")
		return
	}

	date, err := timegrid.ParseDay(args[0], time.Now())
	if err != nil {
		bot.SendMessage(chatID, "day 입력이 좀 이상하다. '오늘', '내일', 'YYYY-MM-DD' 중 하나로 넣어라.")
		return
	}

	from, to := args[1], args[2]
	if !timegrid.IsClock(from) || !timegrid.IsClock(to) {
		bot.SendMessage(chatID, "시간은 HH:MM으로 넣어라. 예: 18:00, 23:30, 24:00")
		return
	}

	fromM, _ := timegrid.ToMinutes(from)
	toM, _ := timegrid.ToMinutes(to)
	if fromM >= toM {
		bot.SendMessage(chatID, "시간 범위가 이상하다. from이 to보다 빨라야 된다.")
		return
	}

	durationMin, err := strconv.Atoi(args[3])
	if err != nil || durationMin <= 0 || durationMin > maxDurationMinutes {
		bot.SendMessage(chatID, fmt.Sprintf("duration(분)이 좀 이상하다. 1~%d 사이로 넣어라.", maxDurationMinutes))
		return
	}

	stepMin := defaultStepMinutes
	if len(args) > 4 {
		stepMin, err = strconv.Atoi(args[4])
		if err != nil {
			stepMin = 0
		}
	}
	if stepMin <= 0 || stepMin > maxStepMinutes {
		bot.SendMessage(chatID, fmt.Sprintf("step(분)이 좀 이상하다. 1~%d 사이로 넣어라.", maxStepMinutes))
		return
	}

	if fromM+durationMin > toM {
		bot.SendMessage(chatID, "그 시간 범위 안에 duration이 안 들어간다. 범위를 늘리던지 duration을 줄여라.")
		return
	}

	candidates, err := finder.Search(availability.Params{
		Date:            date,
		From:            from,
		To:              to,
		DurationMinutes: durationMin,
		StepMinutes:     stepMin,
		MaxCandidates:   maxCandidates,
	})
	if err != nil {
		logger.Global.Error("Availability search failed: %v", err)
		bot.SendMessage(chatID, "검색이 꼬였다. 쪼매 있다가 다시 해봐라.")
		return
	}

	if len(candidates) == 0 {
		bot.SendMessage(chatID, messageService.NoCandidates(date, from, to, durationMin, stepMin))
		return
	}

	// Anyone may trigger a search; the creator key is recorded only when
	// the caller resolves to a roster member.
	creatorKey, _ := members.KeyForTelegramID(message.From.ID)

	chosen := candidates[0]
	p, err := engine.Create(creatorKey, date, chosen.Start, chosen.End)
	if err != nil {
		logger.Global.Error("Failed to create proposal: %v", err)
		bot.SendMessage(chatID, "제안을 못 만들었다. 쪼매 있다가 다시 해봐라.")
		return
	}

	conflicts, err := engine.Conflicts(p)
	if err != nil {
		logger.Global.Error("Failed to compute conflicts: %v", err)
		conflicts = nil
	}

	bot.SendMessageWithKeyboard(chatID, messageService.ProposalBoard(p, conflicts), voteKeyboard(p.ID))
}

// handleVote applies a button press (callback data "go:<id>:<action>") and
// re-renders the proposal board with fresh conflicts.
func handleVote(bot *telegram.Bot, engine *proposal.Engine, messageService *messages.Service, members *roster.Roster, callback *tgbotapi.CallbackQuery) {
	parts := strings.Split(callback.Data, ":")
	if len(parts) != 3 {
		return
	}
	proposalID, action := parts[1], parts[2]

	callerKey, registered := members.KeyForTelegramID(callback.From.ID)
	if !registered {
		bot.AnswerCallbackQuery(callback.ID, "니는 등록 멤버가 아니라서 참여 못 한다.")
		return
	}

	response := models.ResponseDecline
	if action == "ACCEPT" {
		response = models.ResponseAccept
	}

	updated, err := engine.RecordResponse(proposalID, callerKey, response)
	if err != nil {
		if errors.Is(err, proposal.ErrNotFound) {
			bot.AnswerCallbackQuery(callback.ID, "그 제안은 없다. 새로 잡아라.")
			return
		}
		logger.Global.Error("Failed to record response: %v", err)
		bot.AnswerCallbackQuery(callback.ID, "뭔가 꼬였다. 다시 눌러봐라.")
		return
	}

	conflicts, err := engine.Conflicts(updated)
	if err != nil {
		logger.Global.Error("Failed to compute conflicts: %v", err)
		conflicts = nil
	}

	board := messageService.ProposalBoard(updated, conflicts)
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	if updated.Status == models.StatusOpen {
		bot.EditMessageWithKeyboard(chatID, messageID, board, voteKeyboard(updated.ID))
	} else {
		// Terminal: drop the buttons so late taps go nowhere.
		bot.EditMessage(chatID, messageID, board)
	}

	bot.AnswerCallbackQuery(callback.ID, "")
}

func voteKeyboard(proposalID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("간다", fmt.Sprintf("go:%s:ACCEPT", proposalID)),
			tgbotapi.NewInlineKeyboardButtonData("못 간다", fmt.Sprintf("go:%s:DECLINE", proposalID)),
		),
	)
}

// busyErrorReply maps busy-store failures to user-facing text.
func busyErrorReply(err error) string {
	switch {
	case errors.Is(err, busy.ErrInvalidRange):
		return "시간이 좀 이상하다. 시작이 끝보다 빨라야 된다. 다시 넣어라."
	case errors.Is(err, timegrid.ErrBadClock):
		return "시간은 HH:MM으로 넣어라. 예: 18:00, 23:30, 24:00"
	case errors.Is(err, timegrid.ErrBadDate):
		return "날짜가 좀 이상하다. YYYY-MM-DD로 넣어라."
	case errors.Is(err, busy.ErrNotFound):
		return "그 번호는 없다. /busy list로 한번 보고 와라."
	case errors.Is(err, busy.ErrNotOwner):
		return "그건 니꺼 아니다. 남의 거 건드리면 안 된다."
	case errors.Is(err, roster.ErrUnknownParty):
		return "니는 등록된 멤버가 아니라서 못 한다."
	default:
		logger.Global.Error("Busy operation failed: %v", err)
		return "뭔가 꼬였다. 쪼매 있다가 다시 해봐라."
	}
}
