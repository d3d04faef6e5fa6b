package moderation

import (
	"github.com/arbiter-social/arbiter/moderation/analyzer"
	"github.com/arbiter-social/arbiter/moderation/countstore"
	"github.com/arbiter-social/arbiter/moderation/engine"
	"github.com/arbiter-social/arbiter/moderation/modstore"
)

type Engine = engine.Engine
type EngineConfig = engine.EngineConfig
type Submission = engine.Submission
type Decision = engine.Decision
type Stats = engine.Stats
type SettingsPatch = engine.SettingsPatch

type Notifier = engine.Notifier
type SlackNotifier = engine.SlackNotifier

type Analyzer = analyzer.Analyzer
type AnalysisResult = analyzer.Result
type AnalyzerSettings = analyzer.Settings

type QueueItem = modstore.QueueItem
type ModAction = modstore.ModAction
type ItemFilters = modstore.ItemFilters

var (
	ContentTypePost    = engine.ContentTypePost
	ContentTypeReply   = engine.ContentTypeReply
	ContentTypeProfile = engine.ContentTypeProfile

	DecisionApprove  = engine.DecisionApprove
	DecisionReject   = engine.DecisionReject
	DecisionEscalate = engine.DecisionEscalate

	StatusPending   = modstore.StatusPending
	StatusEscalated = modstore.StatusEscalated
	StatusReviewed  = modstore.StatusReviewed

	PeriodTotal = countstore.PeriodTotal
	PeriodDay   = countstore.PeriodDay
	PeriodHour  = countstore.PeriodHour
)
