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

package storage

import (
	"testing"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"

	"github.com/avoronov/quiz-game-bot/model"
)

func testStorage(t *testing.T) *Postgres {
	db, err := gorm.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Cannot open sqlite: %v", err)
	}

	if err := db.AutoMigrate(&model.User{}, &model.QuizAnswer{}).Error; err != nil {
		t.Fatalf("Cannot migrate: %v", err)
	}

	return &Postgres{db: db}
}

func checker(t *testing.T) func(name string, expected, got interface{}) {
	return func(name string, expected, got interface{}) {
		if expected != got {
			t.Errorf("Wrong \"%s\": Got: %v, expected: %v", name, got, expected)
		}
	}
}

func TestAddUserIfNewIsIdempotent(t *testing.T) {
	p := testStorage(t)
	c := checker(t)

	p.AddUserIfNew(100, "vasya", "Василий")
	p.AddUserIfNew(100, "renamed", "Другой")

	var count int
	p.db.Table("users").Count(&count)
	c("user count", 1, count)

	var user model.User
	p.db.Where("user_id = ?", int64(100)).First(&user)
	c("username", "vasya", user.Username)
	c("first name", "Василий", user.FirstName)
	c("scores", 0, user.Scores)
}

func TestSaveAnswerDeduplicates(t *testing.T) {
	p := testStorage(t)
	c := checker(t)

	p.AddUserIfNew(100, "vasya", "Василий")

	p.SaveAnswer("poll-1", 100, true)
	// A later duplicate must neither error nor overwrite.
	if err := p.SaveAnswer("poll-1", 100, false); err != nil {
		t.Errorf("Duplicate answer errored: %v", err)
	}

	var count int
	p.db.Table("quiz_answers").Count(&count)
	c("answer count", 1, count)

	var answer model.QuizAnswer
	p.db.Where("poll_id = ? AND user_id = ?", "poll-1", int64(100)).First(&answer)
	c("correct", true, answer.Correct)
}

func TestAddPoint(t *testing.T) {
	p := testStorage(t)
	c := checker(t)

	p.AddUserIfNew(100, "vasya", "Василий")
	p.AddPoint(100)
	p.AddPoint(100)

	var user model.User
	p.db.Where("user_id = ?", int64(100)).First(&user)
	c("scores", 2, user.Scores)
}

func TestWinners(t *testing.T) {
	p := testStorage(t)
	c := checker(t)

	p.AddUserIfNew(100, "vasya", "Василий")
	p.AddUserIfNew(200, "", "Пётр")
	p.AddUserIfNew(300, "masha", "Мария")

	p.SaveAnswer("poll-1", 100, true)
	p.SaveAnswer("poll-1", 200, false)
	p.SaveAnswer("poll-1", 300, true)
	p.SaveAnswer("poll-2", 200, true)

	winners, err := p.Winners("poll-1")
	if err != nil {
		t.Fatalf("Winners: %v", err)
	}

	c("winners count", 2, len(winners))
	if len(winners) == 2 {
		c("first winner", int64(100), winners[0].UserID)
		c("second winner", int64(300), winners[1].UserID)
	}
}

func TestResetUserStats(t *testing.T) {
	p := testStorage(t)
	c := checker(t)

	p.AddUserIfNew(100, "vasya", "Василий")
	p.AddUserIfNew(200, "", "Пётр")
	p.SaveAnswer("poll-1", 100, true)
	p.SaveAnswer("poll-1", 200, true)
	p.AddPoint(100)
	p.AddPoint(200)

	if err := p.ResetUserStats(100); err != nil {
		t.Fatalf("ResetUserStats: %v", err)
	}

	var reset, untouched model.User
	p.db.Where("user_id = ?", int64(100)).First(&reset)
	p.db.Where("user_id = ?", int64(200)).First(&untouched)
	c("reset scores", 0, reset.Scores)
	c("untouched scores", 1, untouched.Scores)

	var own, others int
	p.db.Table("quiz_answers").Where("user_id = ?", int64(100)).Count(&own)
	p.db.Table("quiz_answers").Where("user_id = ?", int64(200)).Count(&others)
	c("own answers left", 0, own)
	c("other answers left", 1, others)
}

func TestGetAllUserStats(t *testing.T) {
	p := testStorage(t)
	c := checker(t)

	// Registration order: 100, 200, 300, 400.
	p.AddUserIfNew(100, "vasya", "Василий")
	p.AddUserIfNew(200, "", "Пётр")
	p.AddUserIfNew(300, "masha", "Мария")
	p.AddUserIfNew(400, "silent", "Тихоня")

	// 100: 4 games, 3 correct, score 5.
	p.SaveAnswer("p1", 100, true)
	p.SaveAnswer("p2", 100, true)
	p.SaveAnswer("p3", 100, true)
	p.SaveAnswer("p4", 100, false)
	for i := 0; i < 5; i++ {
		p.AddPoint(100)
	}

	// 200: 1 game, 1 correct, score 5 — same score as 100, registered later.
	p.SaveAnswer("p1", 200, true)
	for i := 0; i < 5; i++ {
		p.AddPoint(200)
	}

	// 300: 2 games, 0 correct, score 9.
	p.SaveAnswer("p1", 300, false)
	p.SaveAnswer("p2", 300, false)
	for i := 0; i < 9; i++ {
		p.AddPoint(300)
	}

	// 400: never played.

	stats, err := p.GetAllUserStats()
	if err != nil {
		t.Fatalf("GetAllUserStats: %v", err)
	}

	if len(stats) != 4 {
		t.Fatalf("Wrong stats length: got %d, expected 4", len(stats))
	}

	// Score desc, ties broken by registration order.
	c("1st row", int64(300), stats[0].UserID)
	c("2nd row", int64(100), stats[1].UserID)
	c("3rd row", int64(200), stats[2].UserID)
	c("4th row", int64(400), stats[3].UserID)

	c("total games", 4, stats[1].TotalGames)
	c("correct answers", 3, stats[1].CorrectAnswers)
	c("wrong answers", 1, stats[1].WrongAnswers)
	c("win percent", 75.0, stats[1].WinPercent)

	c("zero games", 0, stats[3].TotalGames)
	c("zero percent", 0.0, stats[3].WinPercent)
}

func TestGetUserRating(t *testing.T) {
	p := testStorage(t)
	c := checker(t)

	p.AddUserIfNew(100, "vasya", "Василий")
	p.AddUserIfNew(200, "", "Пётр")
	p.AddPoint(200)

	rating, err := p.GetUserRating()
	if err != nil {
		t.Fatalf("GetUserRating: %v", err)
	}

	if len(rating) != 2 {
		t.Fatalf("Wrong rating length: got %d, expected 2", len(rating))
	}

	c("1st rank", 1, rating[0].Rank)
	c("1st user", int64(200), rating[0].UserID)
	c("2nd rank", 2, rating[1].Rank)
	c("2nd user", int64(100), rating[1].UserID)
}

func TestGetStatistics(t *testing.T) {
	p := testStorage(t)
	c := checker(t)

	p.AddUserIfNew(100, "vasya", "Василий")
	p.AddUserIfNew(200, "", "Пётр")
	p.SaveAnswer("p1", 100, true)
	p.SaveAnswer("p1", 200, false)
	p.SaveAnswer("p2", 100, true)

	stats, err := p.GetStatistics()
	if err != nil {
		t.Fatalf("GetStatistics: %v", err)
	}

	c("users", int64(2), stats.Users)
	c("answers", int64(3), stats.Answers)
	c("polls played", int64(2), stats.PollsPlayed)
}
