/*
 * This file is part of Quiz Game Bot.
 * Copyright (C) 2026  Andrei
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package main

import (
	"fmt"
	"html"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	tb "gopkg.in/tucnak/telebot.v2"

	"github.com/avoronov/quiz-game-bot/model"
	"github.com/avoronov/quiz-game-bot/quiz"
	"github.com/avoronov/quiz-game-bot/scheduler"
	"github.com/avoronov/quiz-game-bot/storage"
	"github.com/avoronov/quiz-game-bot/utils"
)

const topSize = 7

var (
	bot        *tb.Bot
	cfg        config
	sched      *scheduler.Scheduler
	controller *quiz.Controller
	stats      StatsGetter

	// userID -> chatID of an unconfirmed /rs request
	pendingResets   map[int64]int64
	pendingResetsMu sync.Mutex

	quizTotal           float64
	pollAnswersRecieved float64
	topTotal            float64
	myScoreTotal        float64
	resetTotal          float64
)

type StatsGetter interface {
	GetAllUserStats() ([]model.UserStats, error)
	GetUserRating() ([]model.UserStats, error)
	ResetUserStats(userID int64) error
}

type StatisticsGetter interface {
	GetStatistics() (model.Statistics, error)
}

const commandList = `Команды:
/quiz — начать викторину
/top — таблица лидеров
/my_score — моя статистика
/rs — сбросить статистику`

func loggerMiddlewarePoller(upd *tb.Update) bool {
	if upd.Message != nil && upd.Message.Chat != nil && upd.Message.Sender != nil {
		log.Printf(
			"Received update, chat: %d, chatTitle: \"%s\", user: %d",
			upd.Message.Chat.ID,
			upd.Message.Chat.Title,
			upd.Message.Sender.ID,
		)
	}
	return true
}

func main() {
	logInit()
	rand.Seed(time.Now().UnixNano())

	var err error
	cfg, err = loadConfig()
	if err != nil {
		log.Fatalf("Cannot read config: %v", err)
	}
	setLogLevel(cfg.LogLevel)

	if cfg.Token == "" {
		log.Fatal("Bot token is not set, check QUIZ_BOT_TOKEN")
	}

	log.Info("Loading question bank")
	f, err := os.Open(cfg.QuestionsFile)
	if err != nil {
		log.Fatalf("Cannot open question bank: %v", err)
	}
	questions, err := quiz.NewQuestionsProviderReader(f)
	f.Close()
	if err != nil {
		log.Fatalf("Cannot parse question bank: %v", err)
	}

	log.Info("Reading DB env variables")
	creds, err := getDbCredentialsFromEnv()
	if err != nil {
		log.Fatalf("Cannot get database credentials from ENV: %v", err)
	}

	log.Info("Connecting to the database")
	pg, err := storage.NewPostgres(storage.NewConnString(
		creds.Host, creds.User,
		creds.Pass, creds.Name,
		creds.Port, creds.KW,
	), storage.WrapLogrus(log))
	if err != nil {
		log.Fatalf("Cannot connect to database (%s, %s) on host %s: %v", creds.User, creds.Name, creds.Host, err)
	}

	stats = pg
	pendingResets = make(map[int64]int64)
	sched = scheduler.New(log)

	log.Info("Connecting to Telegram API")
	poller := &tb.LongPoller{Timeout: 15 * time.Second}
	settings := tb.Settings{
		Token:  cfg.Token,
		Poller: tb.NewMiddlewarePoller(poller, loggerMiddlewarePoller),
	}
	bot, err = tb.NewBot(settings)
	if err != nil {
		log.Fatalf("Cannot connect to Telegram API: %v", err)
	}

	controller = quiz.NewController(
		&telegramPlatform{bot: bot},
		pg, questions, sched, log,
		cfg.QuizDuration, cfg.AnnounceTTL,
	)

	log.Info("Binding handlers")
	bot.Handle("/start", dropCommand(autoDelete(cfg.ReplyTTL, startHandler)))
	bot.Handle("/quiz", dropCommand(autoDelete(cfg.ReplyTTL, quizHandler)))
	bot.Handle("/top", dropCommand(autoDelete(cfg.TopTTL, topHandler)))
	bot.Handle("/my_score", dropCommand(autoDelete(cfg.ReplyTTL, myScoreHandler)))
	bot.Handle("/rs", dropCommand(autoDelete(cfg.ReplyTTL, resetHandler)))
	bot.Handle(tb.OnText, autoDelete(cfg.ReplyTTL, textHandler))
	bot.Handle(tb.OnPollAnswer, pollAnswerHandler)

	collector := newMetricsCollector(pg, controller.Polls(), sched)
	prometheus.MustRegister(collector)

	http.Handle("/metrics", promhttp.Handler())

	log.Info("Starting metrics exporter server")
	go http.ListenAndServe(cfg.MetricsAddr, nil)

	log.Info("Starting the bot")
	bot.Start()
}

// Decorator removing the triggering command message after a delay
func dropCommand(f func(*tb.Message)) func(*tb.Message) {
	return func(m *tb.Message) {
		chatID, messageID := m.Chat.ID, m.ID
		sched.ScheduleOnce(cfg.CommandTTL, func() { deleteMessage(chatID, messageID) })

		f(m)
	}
}

// Decorator removing every message the handler sent after a delay.
// Handlers return the messages they produced instead of the bot
// intercepting its own send calls.
func autoDelete(ttl time.Duration, f func(*tb.Message) []*tb.Message) func(*tb.Message) {
	return func(m *tb.Message) {
		for _, sent := range f(m) {
			if sent == nil {
				continue
			}
			chatID, messageID := sent.Chat.ID, sent.ID
			sched.ScheduleOnce(ttl, func() { deleteMessage(chatID, messageID) })
		}
	}
}

func deleteMessage(chatID int64, messageID int) {
	err := bot.Delete(tb.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chatID})
	if err != nil {
		// Already gone or no rights, both fine.
		log.Debugf("Cannot delete message %d in chat %d: %v", messageID, chatID, err)
	}
}

func startHandler(m *tb.Message) []*tb.Message {
	text := fmt.Sprintf("Привет, %s! 🤗\n\n%s", html.EscapeString(m.Sender.FirstName), commandList)

	msg, err := bot.Send(m.Chat, text)
	if err != nil {
		log.Errorf("startHandler: cannot send greeting: %v", err)
		return nil
	}
	return []*tb.Message{msg}
}

func quizHandler(m *tb.Message) []*tb.Message {
	quizTotal++

	switch err := controller.StartQuiz(m.Chat.ID); err {
	case nil:
		return nil
	case quiz.ErrNoQuestions:
		msg, sendErr := bot.Send(m.Chat, "Вопросы недоступны 😱.")
		if sendErr != nil {
			log.Errorf("quizHandler: cannot send notice: %v", sendErr)
			return nil
		}
		return []*tb.Message{msg}
	default:
		log.Errorf("quizHandler: cannot start quiz: %v", err)
		return nil
	}
}

func myScoreHandler(m *tb.Message) []*tb.Message {
	myScoreTotal++

	all, err := stats.GetAllUserStats()
	if err != nil {
		log.Errorf("myScoreHandler: cannot get stats: %v", err)
		return nil
	}

	var own *model.UserStats
	for i := range all {
		if all[i].UserID == int64(m.Sender.ID) {
			own = &all[i]
			break
		}
	}

	if own == nil {
		msg, err := bot.Send(m.Chat, "Вы ещё не участвовали в квизах 😅")
		if err != nil {
			log.Errorf("myScoreHandler: cannot send reply: %v", err)
			return nil
		}
		return []*tb.Message{msg}
	}

	text := fmt.Sprintf(
		"🏆 Очки: %d\n🎮 Всего игр: %d\n✅ Правильных: %d\n❌ Неправильных: %d\n📊 %% П/Н: %.1f%%",
		own.Scores, own.TotalGames, own.CorrectAnswers, own.WrongAnswers, own.WinPercent,
	)

	msg, err := bot.Send(m.Chat, text)
	if err != nil {
		log.Errorf("myScoreHandler: cannot send stats: %v", err)
		return nil
	}
	return []*tb.Message{msg}
}

func topHandler(m *tb.Message) []*tb.Message {
	topTotal++

	rating, err := stats.GetUserRating()
	if err != nil {
		log.Errorf("topHandler: cannot get rating: %v", err)
		return nil
	}

	if len(rating) < 1 {
		msg, err := bot.Send(m.Chat, "Данных пока недостаточно!")
		if err != nil {
			log.Errorf("topHandler: cannot send reply: %v", err)
			return nil
		}
		return []*tb.Message{msg}
	}

	headers := []string{"№", "Имя", "Очки", "Игр", "П/Н%"}

	var rows [][]string
	var ownRow []string
	for _, s := range rating {
		row := []string{
			strconv.Itoa(s.Rank),
			html.EscapeString(utils.DisplayName(s.Username, s.FirstName)),
			strconv.Itoa(s.Scores),
			strconv.Itoa(s.TotalGames),
			fmt.Sprintf("%.1f%%", s.WinPercent),
		}
		if s.Rank <= topSize {
			rows = append(rows, row)
		}
		if s.UserID == int64(m.Sender.ID) && s.Rank > topSize {
			ownRow = row
		}
	}

	// The caller sits below the top: show them after a separator.
	if ownRow != nil {
		rows = append(rows, []string{"—", "—", "—", "—", "—"})
		rows = append(rows, ownRow)
	}

	msg, err := bot.Send(m.Chat, "<pre>"+utils.FormatTable(headers, rows)+"</pre>", tb.ModeHTML)
	if err != nil {
		log.Errorf("topHandler: cannot send rating: %v", err)
		return nil
	}
	return []*tb.Message{msg}
}

func resetHandler(m *tb.Message) []*tb.Message {
	markup := &tb.ReplyMarkup{
		ResizeReplyKeyboard: true,
		OneTimeKeyboard:     true,
		ReplyKeyboard:       [][]tb.ReplyButton{{{Text: "Да"}, {Text: "Нет"}}},
	}

	msg, err := bot.Send(m.Chat, "⚠ Вы уверены, что хотите обнулить вашу статистику?", markup)
	if err != nil {
		log.Errorf("resetHandler: cannot ask for confirmation: %v", err)
		return nil
	}

	pendingResetsMu.Lock()
	pendingResets[int64(m.Sender.ID)] = m.Chat.ID
	pendingResetsMu.Unlock()

	return []*tb.Message{msg}
}

// Consumes the Да/Нет answer to a pending /rs confirmation. Other text
// is none of the bot's business.
func textHandler(m *tb.Message) []*tb.Message {
	userID := int64(m.Sender.ID)

	pendingResetsMu.Lock()
	chatID, ok := pendingResets[userID]
	if ok && chatID == m.Chat.ID {
		delete(pendingResets, userID)
	}
	pendingResetsMu.Unlock()

	if !ok || chatID != m.Chat.ID {
		return nil
	}

	removeKeyboard := &tb.ReplyMarkup{ReplyKeyboardRemove: true}

	if !strings.EqualFold(strings.TrimSpace(m.Text), "да") {
		msg, err := bot.Send(m.Chat, "❌ Обнуление статистики отменено.", removeKeyboard)
		if err != nil {
			log.Errorf("textHandler: cannot send reply: %v", err)
			return nil
		}
		return []*tb.Message{msg}
	}

	resetTotal++
	if err := stats.ResetUserStats(userID); err != nil {
		log.Errorf("textHandler: cannot reset stats for user %d: %v", userID, err)
		msg, sendErr := bot.Send(m.Chat, "Не получилось обнулить статистику, попробуйте позже.", removeKeyboard)
		if sendErr != nil {
			log.Errorf("textHandler: cannot send reply: %v", sendErr)
			return nil
		}
		return []*tb.Message{msg}
	}

	msg, err := bot.Send(m.Chat, "✅ Ваша статистика была обнулена!", removeKeyboard)
	if err != nil {
		log.Errorf("textHandler: cannot send reply: %v", err)
		return nil
	}
	return []*tb.Message{msg}
}

func pollAnswerHandler(pa *tb.PollAnswer) {
	pollAnswersRecieved++

	// An empty option list means the vote was retracted.
	option := -1
	if len(pa.Options) > 0 {
		option = pa.Options[0]
	}

	controller.HandleAnswer(pa.PollID, int64(pa.User.ID), pa.User.Username, pa.User.FirstName, option)
}
