package main

import (
	"strconv"

	tb "gopkg.in/tucnak/telebot.v2"
)

// telegramPlatform adapts telebot to the quiz.Platform interface, so
// the controller never touches Telegram types directly.
type telegramPlatform struct {
	bot *tb.Bot
}

func (t *telegramPlatform) SendQuizPoll(chatID int64, question string, options []string, correctOption int, explanation string) (string, int, error) {
	poll := &tb.Poll{
		Type:          tb.PollQuiz,
		Question:      question,
		CorrectOption: correctOption,
		Explanation:   explanation,
		Anonymous:     false,
	}
	poll.AddOptions(options...)

	msg, err := t.bot.Send(&tb.Chat{ID: chatID}, poll)
	if err != nil {
		return "", 0, err
	}

	return msg.Poll.ID, msg.ID, nil
}

func (t *telegramPlatform) StopPoll(chatID int64, messageID int) error {
	_, err := t.bot.StopPoll(tb.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	})
	return err
}

func (t *telegramPlatform) DeleteMessage(chatID int64, messageID int) error {
	return t.bot.Delete(tb.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	})
}

func (t *telegramPlatform) SendMessage(chatID int64, text string) (int, error) {
	msg, err := t.bot.Send(&tb.Chat{ID: chatID}, text, tb.ModeHTML)
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}
