package device

import (
	"strings"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/vkchain/core"
)

// Candidate is a scored adapter
type Candidate struct {
	Adapter core.Adapter
	Info    core.AdapterInfo
	Score   Score
}

// Selector picks the adapter to render with
type Selector struct {
	scorer *Scorer
	log    log.FieldLogger

	// Preferred, when set, picks the first eligible adapter whose
	// name contains it regardless of score
	Preferred string
}

// NewSelector creates a Selector, logger may be nil
func NewSelector(scorer *Scorer, logger log.FieldLogger) *Selector {
	return &Selector{
		scorer: scorer,
		log:    core.LoggerOr(logger),
	}
}

// Rank scores every adapter, keeping enumeration order
func (s *Selector) Rank(adapters []core.Adapter) []Candidate {
	candidates := make([]Candidate, 0, len(adapters))
	for _, adapter := range adapters {
		info := adapter.Info()
		candidates = append(candidates, Candidate{
			Adapter: adapter,
			Info:    info,
			Score:   s.scorer.Score(info),
		})
	}
	return candidates
}

// SelectBest picks the eligible adapter with the highest score, the first
// one in enumeration order on ties. A zero score is a valid pick.
func (s *Selector) SelectBest(adapters []core.Adapter) (Candidate, error) {
	var (
		best  Candidate
		found bool
	)
	for _, c := range s.Rank(adapters) {
		if !c.Score.Eligible {
			s.log.WithFields(log.Fields{
				"adapter": c.Info.Name,
				"reason":  c.Score.Reason,
			}).Debug("adapter ineligible")
			continue
		}
		if s.Preferred != "" && strings.Contains(c.Info.Name, s.Preferred) {
			best, found = c, true
			s.log.WithField("preferred", s.Preferred).Debug("preferred adapter matched")
			break
		}
		if !found || c.Score.Value > best.Score.Value {
			best, found = c, true
		}
	}

	if !found {
		return Candidate{}, errors.Mark(
			errors.Newf("none of %d adapters is eligible", len(adapters)),
			core.ErrNoSuitableDevice)
	}

	s.log.WithFields(log.Fields{
		"adapter": best.Info.Name,
		"score":   best.Score.Value,
		"api":     core.VersionString(best.Info.APIVersion),
	}).Info("adapter selected")
	return best, nil
}

// SelectFrom enumerates the instance adapters and picks the best
func (s *Selector) SelectFrom(instance core.Instance) (Candidate, error) {
	adapters, err := instance.Adapters()
	if err != nil {
		return Candidate{}, errors.Wrap(err, "enumerate adapters")
	}
	if len(adapters) == 0 {
		return Candidate{}, errors.Mark(core.ErrNoAdapters, core.ErrNoSuitableDevice)
	}
	return s.SelectBest(adapters)
}
