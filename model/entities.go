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

package model

// User is a quiz participant. A row is created on the first answer
// the bot sees from a user and is never deleted, only reset.
type User struct {
	ID     int   `gorm:"primary_key"`
	UserID int64 `gorm:"unique_index"`

	Scores    int
	Username  string
	FirstName string
}

// QuizAnswer is a persisted (poll, user, correctness) fact.
// At most one row may exist per (poll, user) pair.
type QuizAnswer struct {
	PollID  string `gorm:"primary_key"`
	UserID  int64  `gorm:"primary_key"`
	Correct bool
}

// UserStats is one leaderboard row with derived counters.
type UserStats struct {
	Rank   int
	UserID int64

	Username  string
	FirstName string

	Scores         int
	TotalGames     int
	CorrectAnswers int
	WrongAnswers   int

	// Correct answers per total games, percent, one decimal place.
	WinPercent float64
}

type Statistics struct {
	Users       int64
	Answers     int64
	PollsPlayed int64
}
