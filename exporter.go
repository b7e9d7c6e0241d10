package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/avoronov/quiz-game-bot/quiz"
	"github.com/avoronov/quiz-game-bot/scheduler"
)

type metricsCollector struct {
	sg    StatisticsGetter
	polls *quiz.ActivePolls
	sched *scheduler.Scheduler

	quizzesStarted      *prometheus.Desc
	pollAnswersRecieved *prometheus.Desc
	topCalls            *prometheus.Desc
	myScoreCalls        *prometheus.Desc
	resetCalls          *prometheus.Desc
	usersTotal          *prometheus.Desc
	answersTotal        *prometheus.Desc
	gamesTotal          *prometheus.Desc
	activePolls         *prometheus.Desc
	pendingActions      *prometheus.Desc
}

func newMetricsCollector(sg StatisticsGetter, polls *quiz.ActivePolls, sched *scheduler.Scheduler) *metricsCollector {
	return &metricsCollector{
		sg:    sg,
		polls: polls,
		sched: sched,

		quizzesStarted: prometheus.NewDesc("quiz_starts_total",
			"Shows how many times the quiz command has been called",
			nil, nil,
		),
		pollAnswersRecieved: prometheus.NewDesc("poll_answers_total",
			"Shows how many poll answer events has been recieved",
			nil, nil,
		),
		topCalls: prometheus.NewDesc("top_calls_total",
			"Shows how many times the top command has been called",
			nil, nil,
		),
		myScoreCalls: prometheus.NewDesc("my_score_calls_total",
			"Shows how many times the myscore command has been called",
			nil, nil,
		),
		resetCalls: prometheus.NewDesc("reset_calls_total",
			"Shows how many times the reset command has been called",
			nil, nil,
		),
		usersTotal: prometheus.NewDesc("users_total",
			"Shows how many users are in the bot",
			nil, nil,
		),
		answersTotal: prometheus.NewDesc("answers_total",
			"Shows how many answer records are stored",
			nil, nil,
		),
		gamesTotal: prometheus.NewDesc("games_total",
			"Shows how many polls has been played",
			nil, nil,
		),
		activePolls: prometheus.NewDesc("active_polls",
			"Shows how many polls are open right now",
			nil, nil,
		),
		pendingActions: prometheus.NewDesc("scheduled_actions_pending",
			"Shows how many deferred actions are armed",
			nil, nil,
		),
	}
}

// Writes all descriptors to the prometheus desc channel
func (c *metricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.quizzesStarted
	ch <- c.pollAnswersRecieved
	ch <- c.topCalls
	ch <- c.myScoreCalls
	ch <- c.resetCalls
	ch <- c.usersTotal
	ch <- c.answersTotal
	ch <- c.gamesTotal
	ch <- c.activePolls
	ch <- c.pendingActions
}

// Collect implements required collect function for all promehteus collectors
func (c *metricsCollector) Collect(ch chan<- prometheus.Metric) {
	stats, _ := c.sg.GetStatistics()

	ch <- prometheus.MustNewConstMetric(c.quizzesStarted, prometheus.CounterValue, quizTotal)
	ch <- prometheus.MustNewConstMetric(c.pollAnswersRecieved, prometheus.CounterValue, pollAnswersRecieved)
	ch <- prometheus.MustNewConstMetric(c.topCalls, prometheus.CounterValue, topTotal)
	ch <- prometheus.MustNewConstMetric(c.myScoreCalls, prometheus.CounterValue, myScoreTotal)
	ch <- prometheus.MustNewConstMetric(c.resetCalls, prometheus.CounterValue, resetTotal)
	ch <- prometheus.MustNewConstMetric(c.usersTotal, prometheus.CounterValue, float64(stats.Users))
	ch <- prometheus.MustNewConstMetric(c.answersTotal, prometheus.CounterValue, float64(stats.Answers))
	ch <- prometheus.MustNewConstMetric(c.gamesTotal, prometheus.CounterValue, float64(stats.PollsPlayed))
	ch <- prometheus.MustNewConstMetric(c.activePolls, prometheus.GaugeValue, float64(c.polls.Len()))
	ch <- prometheus.MustNewConstMetric(c.pendingActions, prometheus.GaugeValue, float64(c.sched.Pending()))
}
