package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/token-ledger/backend/internal/events"
	"github.com/token-ledger/backend/internal/models"
	"github.com/token-ledger/backend/internal/repositories"
	"go.uber.org/zap"
)

// MissionGraph is a validated mission DAG in canonical order.
type MissionGraph struct {
	missions []models.Mission
	index    map[string]int
}

// NewMissionGraph rejects duplicate ids, unknown requirements and cycles.
func NewMissionGraph(missions []models.Mission) (*MissionGraph, error) {
	g := &MissionGraph{
		missions: append([]models.Mission(nil), missions...),
		index:    make(map[string]int, len(missions)),
	}
	for i, m := range g.missions {
		if m.ID == "" {
			return nil, fmt.Errorf("%w: mission at position %d has no id", ErrInvalidGraph, i)
		}
		if m.Reward == nil {
			return nil, fmt.Errorf("%w: mission %q has no reward", ErrInvalidGraph, m.ID)
		}
		if _, dup := g.index[m.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate mission %q", ErrInvalidGraph, m.ID)
		}
		g.index[m.ID] = i
	}
	for _, m := range g.missions {
		for _, req := range m.Requirements {
			if _, ok := g.index[req]; !ok {
				return nil, fmt.Errorf("%w: mission %q requires unknown %q", ErrInvalidGraph, m.ID, req)
			}
		}
	}
	if cycle := g.findCycle(); cycle != "" {
		return nil, fmt.Errorf("%w: cycle through %q", ErrInvalidGraph, cycle)
	}
	return g, nil
}

func (g *MissionGraph) findCycle() string {
	const (
		white = iota
		grey
		black
	)
	color := make([]int, len(g.missions))
	var visit func(i int) string
	visit = func(i int) string {
		color[i] = grey
		for _, req := range g.missions[i].Requirements {
			j := g.index[req]
			switch color[j] {
			case grey:
				return req
			case white:
				if c := visit(j); c != "" {
					return c
				}
			}
		}
		color[i] = black
		return ""
	}
	for i := range g.missions {
		if color[i] == white {
			if c := visit(i); c != "" {
				return c
			}
		}
	}
	return ""
}

func (g *MissionGraph) Mission(id string) (models.Mission, bool) {
	i, ok := g.index[id]
	if !ok {
		return models.Mission{}, false
	}
	return g.missions[i], true
}

func (g *MissionGraph) Missions() []models.Mission {
	return g.missions
}

type MissionService struct {
	run         *runner
	graph       *MissionGraph
	missions    *repositories.MissionRepo
	accounts    *repositories.AccountRepo
	investments *repositories.InvestmentRepo
	balance     *BalanceService
	log         *zap.Logger
}

func newMissionService(
	run *runner,
	graph *MissionGraph,
	missions *repositories.MissionRepo,
	accounts *repositories.AccountRepo,
	investments *repositories.InvestmentRepo,
	balance *BalanceService,
	log *zap.Logger,
) *MissionService {
	return &MissionService{
		run:         run,
		graph:       graph,
		missions:    missions,
		accounts:    accounts,
		investments: investments,
		balance:     balance,
		log:         log,
	}
}

// Initialize creates the user's mission state with roots unlocked. Calling
// it again changes nothing.
func (s *MissionService) Initialize(ctx context.Context, userID string) error {
	return s.run.mutate(ctx, userID, "missions_init", func(u *unit) error {
		_, err := s.initialize(u)
		return err
	})
}

// Complete marks a mission completed and applies its reward. Completing an
// already completed mission is a no-op.
func (s *MissionService) Complete(ctx context.Context, userID, missionID string) (*models.MissionView, error) {
	var view *models.MissionView
	err := s.run.mutate(ctx, userID, "complete_mission", func(u *unit) error {
		if _, err := s.complete(u, missionID); err != nil {
			return err
		}
		state, err := s.state(u)
		if err != nil {
			return err
		}
		m, _ := s.graph.Mission(missionID)
		v := s.viewOf(m, state)
		view = &v
		u.set("mission", v)
		return nil
	})
	return view, err
}

// NextAvailable returns the first unlocked, uncompleted mission in
// canonical order, or nil when there is none.
func (s *MissionService) NextAvailable(ctx context.Context, userID string) (*models.MissionView, error) {
	var next *models.MissionView
	err := s.run.view(ctx, userID, func(u *unit) error {
		var err error
		next, err = s.nextAvailable(u)
		return err
	})
	return next, err
}

func (s *MissionService) Missions(ctx context.Context, userID string) ([]models.MissionView, error) {
	var views []models.MissionView
	err := s.run.view(ctx, userID, func(u *unit) error {
		state, err := s.state(u)
		if err != nil {
			return err
		}
		views = make([]models.MissionView, 0, len(s.graph.missions))
		for _, m := range s.graph.missions {
			views = append(views, s.viewOf(m, state))
		}
		return nil
	})
	return views, err
}

// state loads the user's mission state; users without one see the initial
// state, which is not persisted here.
func (s *MissionService) state(u *unit) (*models.MissionState, error) {
	state, err := s.missions.Get(u.ctx, u.tx, u.userID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return s.initialState(u), nil
	}
	// missions added to the graph after the state was written
	for _, m := range s.graph.missions {
		if !state.IsUnlocked(m.ID) && requirementsMet(m, state) {
			state.Unlocked[m.ID] = u.now
		}
	}
	return state, nil
}

func (s *MissionService) initialState(u *unit) *models.MissionState {
	state := models.NewMissionState()
	for _, m := range s.graph.missions {
		if m.IsRoot() {
			state.Unlocked[m.ID] = u.now
		}
	}
	return state
}

func (s *MissionService) initialize(u *unit) (*models.MissionState, error) {
	state, err := s.missions.Get(u.ctx, u.tx, u.userID)
	if err != nil {
		return nil, err
	}
	if state != nil {
		return state, nil
	}
	state = s.initialState(u)
	return state, s.missions.Put(u.tx, u.userID, state)
}

// complete reports whether the mission transitioned in this call.
func (s *MissionService) complete(u *unit, missionID string) (bool, error) {
	m, ok := s.graph.Mission(missionID)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownMission, missionID)
	}
	state, err := s.state(u)
	if err != nil {
		return false, err
	}
	if state.IsCompleted(missionID) {
		return false, nil
	}
	if !state.IsUnlocked(missionID) {
		return false, fmt.Errorf("%w: %q", ErrMissionLocked, missionID)
	}
	if !models.CanTransition(models.ValidMissionTransitions, state.Status(missionID), models.MissionCompleted) {
		return false, fmt.Errorf("invalid mission transition for %q", missionID)
	}

	state.Completed[missionID] = u.now
	if err := s.applyReward(u, m); err != nil {
		return false, err
	}
	u.emit(events.EventMissionCompleted, map[string]any{
		"mission_id":  missionID,
		"reward_kind": string(m.Reward.Kind()),
	})

	for _, next := range s.graph.missions {
		if state.IsUnlocked(next.ID) || !requirementsMet(next, state) {
			continue
		}
		state.Unlocked[next.ID] = u.now
		u.emit(events.EventMissionUnlocked, map[string]any{"mission_id": next.ID})
	}

	if err := s.missions.Put(u.tx, u.userID, state); err != nil {
		return false, err
	}
	s.log.Info("mission completed",
		zap.String("user_id", u.userID),
		zap.String("mission_id", missionID),
	)
	return true, nil
}

// completeSideEffect completes the mission tied to a domain operation. A
// mission that is still locked is skipped; the operation itself stands.
func (s *MissionService) completeSideEffect(u *unit, missionID string) error {
	if _, ok := s.graph.Mission(missionID); !ok {
		return nil
	}
	_, err := s.complete(u, missionID)
	if errors.Is(err, ErrMissionLocked) {
		s.log.Debug("mission side effect skipped, mission locked",
			zap.String("user_id", u.userID),
			zap.String("mission_id", missionID),
		)
		return nil
	}
	return err
}

func (s *MissionService) applyReward(u *unit, m models.Mission) error {
	switch r := m.Reward.(type) {
	case models.TokensReward:
		if r.Amount <= 0 {
			return nil
		}
		_, err := s.balance.credit(u, decimal.NewFromInt(r.Amount), ReasonMissionReward)
		return err
	case models.AccessGrant:
		acc, err := s.accounts.GetOrNew(u.ctx, u.tx, u.userID, u.now)
		if err != nil {
			return err
		}
		if !acc.GrantAccess(r.Feature) {
			return nil
		}
		return s.accounts.Put(u.tx, acc)
	case models.NftGrant:
		_, err := s.investments.AddNFT(u.ctx, u.tx, u.userID, models.OwnedNFT{
			NftID:      r.NftID,
			Source:     models.NFTSourceMission,
			AcquiredAt: u.now,
		})
		return err
	case models.CustomReward:
		acc, err := s.accounts.GetOrNew(u.ctx, u.tx, u.userID, u.now)
		if err != nil {
			return err
		}
		acc.AddCustomReward(r.Label)
		return s.accounts.Put(u.tx, acc)
	default:
		return fmt.Errorf("unhandled reward %T for mission %q", r, m.ID)
	}
}

func (s *MissionService) nextAvailable(u *unit) (*models.MissionView, error) {
	state, err := s.state(u)
	if err != nil {
		return nil, err
	}
	for _, m := range s.graph.missions {
		if state.IsUnlocked(m.ID) && !state.IsCompleted(m.ID) {
			v := s.viewOf(m, state)
			return &v, nil
		}
	}
	return nil, nil
}

func (s *MissionService) completedSet(u *unit) (map[string]bool, error) {
	state, err := s.state(u)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(state.Completed))
	for id := range state.Completed {
		done[id] = true
	}
	return done, nil
}

func (s *MissionService) viewOf(m models.Mission, state *models.MissionState) models.MissionView {
	v := models.MissionView{
		ID:           m.ID,
		Title:        m.Title,
		RewardKind:   m.Reward.Kind(),
		Reward:       m.Reward,
		Requirements: m.Requirements,
		Status:       state.Status(m.ID),
		Unlocked:     state.IsUnlocked(m.ID),
		Completed:    state.IsCompleted(m.ID),
	}
	if at, ok := state.Completed[m.ID]; ok {
		at := at
		v.CompletedAt = &at
	}
	if v.Requirements == nil {
		v.Requirements = []string{}
	}
	return v
}

func requirementsMet(m models.Mission, state *models.MissionState) bool {
	for _, req := range m.Requirements {
		if !state.IsCompleted(req) {
			return false
		}
	}
	return true
}
