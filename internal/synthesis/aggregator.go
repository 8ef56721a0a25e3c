package synthesis

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seeg/onehcm/internal/logger"
	"github.com/seeg/onehcm/internal/store"
)

// EvaluationReader reads the per-application evaluation rows. A nil row with
// a nil error means the evaluation has not been started.
type EvaluationReader interface {
	GetProtocol1Evaluation(ctx context.Context, applicationID uuid.UUID) (*store.Protocol1Evaluation, error)
	GetProtocol2Evaluation(ctx context.Context, applicationID uuid.UUID) (*store.Protocol2Evaluation, error)
}

// Protocol1 is the display-ready summary of the documentary, MTP and interview evaluation.
type Protocol1 struct {
	Score      float64 `json:"score"`
	Status     Status  `json:"status"`
	Validation int     `json:"validation"`
	MTP        int     `json:"mtp"`
	Interview  int     `json:"interview"`
}

// Protocol2 is the display-ready summary of the situational evaluation.
type Protocol2 struct {
	Score                    float64 `json:"score"`
	Status                   Status  `json:"status"`
	QCMRole                  float64 `json:"qcm_role"`
	QCMCodir                 float64 `json:"qcm_codir"`
	ValidationOperationnelle int     `json:"validation_operationnelle"`
	AnalyseCompetences       int     `json:"analyse_competences"`
}

// Data is the synthesis of an application. It is recomputed on every read.
type Data struct {
	ApplicationID uuid.UUID `json:"application_id"`
	Protocol1     Protocol1 `json:"protocol1"`
	Protocol2     Protocol2 `json:"protocol2"`
	GlobalScore   float64   `json:"global_score"`
	FinalStatus   Verdict   `json:"final_status"`
}

// Aggregator loads evaluation rows and derives synthesis data from them.
type Aggregator struct {
	reader EvaluationReader
	logger *zap.Logger
}

// NewAggregator creates an aggregator reading through reader.
func NewAggregator(reader EvaluationReader, l *zap.Logger) *Aggregator {
	return &Aggregator{
		reader: reader,
		logger: logger.WithFields(l),
	}
}

// LoadProtocol1 reads and summarizes the protocol 1 evaluation of an application.
func (a *Aggregator) LoadProtocol1(ctx context.Context, applicationID uuid.UUID) (Protocol1, error) {
	row, err := a.reader.GetProtocol1Evaluation(ctx, applicationID)
	if err != nil {
		return Protocol1{}, fmt.Errorf("load protocol 1 evaluation: %w", err)
	}
	return SummarizeProtocol1(row), nil
}

// LoadProtocol2 reads and summarizes the protocol 2 evaluation of an application.
func (a *Aggregator) LoadProtocol2(ctx context.Context, applicationID uuid.UUID) (Protocol2, error) {
	row, err := a.reader.GetProtocol2Evaluation(ctx, applicationID)
	if err != nil {
		return Protocol2{}, fmt.Errorf("load protocol 2 evaluation: %w", err)
	}
	return SummarizeProtocol2(row), nil
}

// Load reads both protocols concurrently and combines them.
func (a *Aggregator) Load(ctx context.Context, applicationID uuid.UUID) (*Data, error) {
	var p1 Protocol1
	var p2 Protocol2

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p1, err = a.LoadProtocol1(gCtx, applicationID)
		return err
	})
	g.Go(func() error {
		var err error
		p2, err = a.LoadProtocol2(gCtx, applicationID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := Combine(applicationID, p1, p2)

	a.logger.Debug("synthesis computed",
		append(logger.RecordFields(applicationID.String(), "", ""),
			zap.Float64("protocol1_score", p1.Score),
			zap.Float64("protocol2_score", p2.Score),
			zap.Float64("global_score", data.GlobalScore),
			zap.String("final_status", string(data.FinalStatus)),
		)...,
	)

	return data, nil
}

// Combine derives the global score and verdict from two protocol summaries.
func Combine(applicationID uuid.UUID, p1 Protocol1, p2 Protocol2) *Data {
	global := ComputeGlobalScore(p1.Score, p2.Score)
	return &Data{
		ApplicationID: applicationID,
		Protocol1:     p1,
		Protocol2:     p2,
		GlobalScore:   global,
		FinalStatus:   Classify(global),
	}
}

// SummarizeProtocol1 converts a protocol 1 row. A nil row is a pending, all-zero evaluation.
func SummarizeProtocol1(row *store.Protocol1Evaluation) Protocol1 {
	if row == nil {
		return Protocol1{Status: StatusPending}
	}

	return Protocol1{
		Score:      row.OverallScore,
		Status:     completionStatus(row.Completed),
		Validation: StarAverage(row.Documentary()...),
		MTP:        StarAverage(row.MTP()...),
		Interview:  StarAverage(row.Interview()...),
	}
}

// SummarizeProtocol2 converts a protocol 2 row. A nil row is a pending, all-zero evaluation.
func SummarizeProtocol2(row *store.Protocol2Evaluation) Protocol2 {
	if row == nil {
		return Protocol2{Status: StatusPending}
	}

	return Protocol2{
		Score:                    row.OverallScore,
		Status:                   completionStatus(row.Completed),
		QCMRole:                  row.QCMRole,
		QCMCodir:                 row.QCMCodir,
		ValidationOperationnelle: PercentToStars(row.OverallScore),
		AnalyseCompetences:       PercentToStars(row.OverallScore),
	}
}

func completionStatus(completed bool) Status {
	if completed {
		return StatusCompleted
	}
	return StatusInProgress
}
