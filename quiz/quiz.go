package quiz

import (
	"fmt"
	"html"
	"math/rand"
	"strings"
	"time"

	"github.com/avoronov/quiz-game-bot/model"
	"github.com/avoronov/quiz-game-bot/utils"
)

// A quiz poll carries the correct answer plus up to three distractors.
const maxOptions = 4

// The correlation entry outlives the closure timer by this factor, so
// a lost closure cannot leak entries forever.
const evictAfterFactor = 3

// Platform is the messaging platform surface the controller needs.
type Platform interface {
	SendQuizPoll(chatID int64, question string, options []string, correctOption int, explanation string) (pollID string, messageID int, err error)
	StopPoll(chatID int64, messageID int) error
	DeleteMessage(chatID int64, messageID int) error
	SendMessage(chatID int64, text string) (messageID int, err error)
}

// Storage persists users and answer records.
type Storage interface {
	AddUserIfNew(userID int64, username, firstName string) error
	AddPoint(userID int64) error
	SaveAnswer(pollID string, userID int64, correct bool) error
	Winners(pollID string) ([]model.User, error)
}

// Scheduler arms deferred one-shot actions.
type Scheduler interface {
	ScheduleOnce(delay time.Duration, action func())
}

// Logger is the subset of logrus the controller needs.
type Logger interface {
	Errorf(format string, args ...interface{})
	Infof(format string, args ...interface{})
}

// Controller drives the whole poll lifecycle: it creates quiz polls,
// correlates incoming answer events back to them, closes them on a
// timer, scores winners and announces the result.
type Controller struct {
	platform  Platform
	storage   Storage
	questions QuestionsProvider
	scheduler Scheduler
	polls     *ActivePolls
	log       Logger

	quizDuration time.Duration
	announceTTL  time.Duration
}

// NewController returns a Controller owning a fresh poll table.
func NewController(platform Platform, storage Storage, questions QuestionsProvider, scheduler Scheduler, log Logger, quizDuration, announceTTL time.Duration) *Controller {
	return &Controller{
		platform:  platform,
		storage:   storage,
		questions: questions,
		scheduler: scheduler,
		polls:     NewActivePolls(),
		log:       log,

		quizDuration: quizDuration,
		announceTTL:  announceTTL,
	}
}

// Polls exposes the correlation table, for metrics.
func (c *Controller) Polls() *ActivePolls {
	return c.polls
}

// StartQuiz picks a random question, posts a quiz poll to the chat and
// arms its closure. Returns ErrNoQuestions when the bank is empty.
func (c *Controller) StartQuiz(chatID int64) error {
	q, err := c.questions.RandomQuestion()
	if err != nil {
		return err
	}

	options := c.questions.Distractors(q.Answer, maxOptions-1)
	options = append(options, q.Answer)
	rand.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	correct := 0
	for i, o := range options {
		if o == q.Answer {
			correct = i
			break
		}
	}

	pollID, messageID, err := c.platform.SendQuizPoll(chatID, q.Text, options, correct, "Правильный ответ: "+q.Answer)
	if err != nil {
		return err
	}

	c.polls.Register(pollID, chatID, messageID, correct)
	c.scheduler.ScheduleOnce(c.quizDuration, func() { c.CloseQuiz(chatID, messageID, pollID) })
	c.scheduler.ScheduleOnce(c.quizDuration*evictAfterFactor, func() { c.polls.Remove(pollID) })

	c.log.Infof("quiz: started poll %s in chat %d", pollID, chatID)
	return nil
}

// HandleAnswer processes one poll answer event. Events without a
// chosen option and events for unknown polls are dropped silently.
func (c *Controller) HandleAnswer(pollID string, userID int64, username, firstName string, option int) {
	if option < 0 {
		return
	}

	if err := c.storage.AddUserIfNew(userID, username, firstName); err != nil {
		c.log.Errorf("quiz: cannot save user %d: %v", userID, err)
		return
	}

	poll := c.polls.Get(pollID)
	if poll == nil {
		// Closed already, or the platform resent a stale event.
		return
	}

	correct := option == poll.CorrectOption
	if !poll.Record(userID, utils.DisplayName(username, firstName), correct) {
		return
	}

	if err := c.storage.SaveAnswer(pollID, userID, correct); err != nil {
		c.log.Errorf("quiz: cannot save answer for poll %s, user %d: %v", pollID, userID, err)
	}
}

// CloseQuiz stops the poll, removes its message, scores the winners
// and announces them. Scoring and the announcement both derive from
// the persisted answer records, so they cannot disagree.
func (c *Controller) CloseQuiz(chatID int64, messageID int, pollID string) {
	poll := c.polls.Get(pollID)
	if poll == nil || !poll.Close() {
		// Unknown or closed already; closure is not repeatable.
		return
	}

	if err := c.platform.StopPoll(chatID, messageID); err != nil {
		c.log.Errorf("quiz: cannot stop poll %s: %v", pollID, err)
	}
	if err := c.platform.DeleteMessage(chatID, messageID); err != nil {
		c.log.Errorf("quiz: cannot delete poll message %d: %v", messageID, err)
	}

	winners, err := c.storage.Winners(pollID)
	if err != nil {
		c.log.Errorf("quiz: cannot get winners of poll %s: %v", pollID, err)
	}

	for _, w := range winners {
		if err := c.storage.AddPoint(w.UserID); err != nil {
			c.log.Errorf("quiz: cannot add point to user %d: %v", w.UserID, err)
		}
	}

	if msgID, err := c.platform.SendMessage(chatID, buildAnnouncement(winners)); err != nil {
		c.log.Errorf("quiz: cannot announce winners of poll %s: %v", pollID, err)
	} else {
		c.scheduler.ScheduleOnce(c.announceTTL, func() {
			if err := c.platform.DeleteMessage(chatID, msgID); err != nil {
				c.log.Errorf("quiz: cannot delete announcement %d: %v", msgID, err)
			}
		})
	}

	poll.Done()
	c.polls.Remove(pollID)

	c.log.Infof("quiz: closed poll %s in chat %d, votes: %d, winners: %d", pollID, chatID, len(poll.Answers()), len(winners))
}

func buildAnnouncement(winners []model.User) string {
	if len(winners) == 0 {
		return "Никто не ответил правильно 😅.\n\nДля продолжения игры используйте /quiz"
	}

	names := make([]string, 0, len(winners))
	for _, w := range winners {
		names = append(names, html.EscapeString(utils.DisplayName(w.Username, w.FirstName)))
	}

	return fmt.Sprintf("🎉 Победители: %s!\n\nДля продолжения игры используйте /quiz", strings.Join(names, ", "))
}
