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
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"

	"github.com/avoronov/quiz-game-bot/model"
	"github.com/avoronov/quiz-game-bot/utils"
)

type Postgres struct {
	db *gorm.DB
}

type KW map[string]interface{}

func NewConnString(host, user, pass, dbname string, port int, kw KW) string {
	baseString := fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s password=%s",
		host, port, user, dbname, pass,
	)

	for k, v := range kw {
		baseString += fmt.Sprintf(" %s=%v", k, v)
	}

	return baseString
}

func NewPostgres(conn string, logger Logger) (*Postgres, error) {
	db, err := gorm.Open("postgres", conn)
	if err != nil {
		return nil, err
	}

	db.SetLogger(logger)
	db.LogMode(true)

	if err := db.AutoMigrate(&model.User{}, &model.QuizAnswer{}).Error; err != nil {
		return nil, err
	}

	return &Postgres{db: db}, nil
}

// AddUserIfNew registers the user with a zero score. Does nothing if
// the user is known already.
func (p *Postgres) AddUserIfNew(userID int64, username, firstName string) error {
	var user model.User
	return p.db.Where(model.User{UserID: userID}).
		Attrs(model.User{Username: username, FirstName: firstName}).
		FirstOrCreate(&user).Error
}

// AddPoint increments the user's score by one.
func (p *Postgres) AddPoint(userID int64) error {
	return p.db.Table("users").
		Where("user_id = ?", userID).
		Update("scores", gorm.Expr("scores + ?", 1)).Error
}

// SaveAnswer stores a (poll, user, correctness) fact. A duplicate
// (poll, user) pair is left untouched and does not error.
func (p *Postgres) SaveAnswer(pollID string, userID int64, correct bool) error {
	var answer model.QuizAnswer
	return p.db.Where(model.QuizAnswer{PollID: pollID, UserID: userID}).
		Attrs(map[string]interface{}{"correct": correct}).
		FirstOrCreate(&answer).Error
}

// ResetUserStats zeroes the user's score and removes the user's answer
// records as one transaction. Other users are not touched.
func (p *Postgres) ResetUserStats(userID int64) error {
	tx := p.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Error; err != nil {
		return err
	}

	if err := tx.Table("users").Where("user_id = ?", userID).Update("scores", 0).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Where("user_id = ?", userID).Delete(model.QuizAnswer{}).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// Winners returns the users holding a correct answer record for the
// poll, in registration order.
func (p *Postgres) Winners(pollID string) ([]model.User, error) {
	var users []model.User

	rows, err := p.db.Table("users").
		Select("users.user_id, users.username, users.first_name").
		Joins("inner join quiz_answers on quiz_answers.user_id = users.user_id").
		Where("quiz_answers.poll_id = ? AND quiz_answers.correct = ?", pollID, true).
		Order("users.id asc").
		Rows()
	if err != nil {
		return users, err
	}
	defer rows.Close()

	for rows.Next() {
		var user model.User
		p.db.ScanRows(rows, &user)
		users = append(users, user)
	}

	return users, nil
}

// GetAllUserStats returns every user with derived counters, ordered by
// score descending, ties broken by registration order.
func (p *Postgres) GetAllUserStats() ([]model.UserStats, error) {
	var stats []model.UserStats

	rows, err := p.db.Table("users").
		Select(`users.user_id, users.username, users.first_name, users.scores,
			count(quiz_answers.poll_id) as total_games,
			coalesce(sum(case when quiz_answers.correct then 1 else 0 end), 0) as correct_answers`).
		Joins("left join quiz_answers on quiz_answers.user_id = users.user_id").
		Group("users.id").
		Order("users.scores desc, users.id asc").
		Rows()
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var s model.UserStats
		p.db.ScanRows(rows, &s)
		s.WrongAnswers = s.TotalGames - s.CorrectAnswers
		s.WinPercent = utils.WinPercent(s.CorrectAnswers, s.TotalGames)
		stats = append(stats, s)
	}

	return stats, nil
}

// GetUserRating returns the same rows with an explicit 1-based rank.
func (p *Postgres) GetUserRating() ([]model.UserStats, error) {
	stats, err := p.GetAllUserStats()
	if err != nil {
		return nil, err
	}

	for i := range stats {
		stats[i].Rank = i + 1
	}

	return stats, nil
}

func (p *Postgres) GetStatistics() (model.Statistics, error) {
	result := model.Statistics{}

	err := p.db.Raw(`SELECT
                 (SELECT COUNT(*) FROM users) AS users,
                 (SELECT COUNT(*) FROM quiz_answers) AS answers,
                 (SELECT COUNT(DISTINCT("poll_id")) FROM quiz_answers) AS polls_played;`).
		Scan(&result).Error

	return result, err
}
