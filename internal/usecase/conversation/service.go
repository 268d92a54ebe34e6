package conversation

import (
	"errors"
	"time"

	"github.com/johnquangdev/call-assistant/internal/domain/entities"
	"github.com/johnquangdev/call-assistant/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/call-assistant/internal/usecase/errors"
	"github.com/johnquangdev/call-assistant/pkg/phone"
)

// Insights is the analytical part of a context without the raw conversations
type Insights struct {
	PhoneKey phone.Key                      `json:"phone_number"`
	Insights entities.RelationshipInsights  `json:"insights"`
	Patterns entities.CommunicationPatterns `json:"patterns"`
	Summary  entities.ContextSummary        `json:"summary"`
}

// Service is the read and update surface over contacts
type Service struct {
	store      repositories.EventStore
	aggregator *Aggregator
	briefing   *BriefingGenerator
	now        func() time.Time
}

// NewService wires the aggregator and briefing generator to one clock
func NewService(store repositories.EventStore, loc *time.Location) *Service {
	return &Service{
		store:      store,
		aggregator: NewAggregator(store, loc),
		briefing:   NewBriefingGenerator(),
		now:        time.Now,
	}
}

// WithClock replaces the clock used for every derived value
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	s.aggregator.now = now
	s.briefing.now = now
	return s
}

// Context builds the full conversation context for key
func (s *Service) Context(key phone.Key) (*entities.ConversationContext, error) {
	ctx, ok := s.aggregator.BuildContext(key)
	if !ok {
		return nil, usecaseErrors.ErrContactNotFound
	}
	return ctx, nil
}

// History returns the stored conversation entries for key, oldest first
func (s *Service) History(key phone.Key) ([]entities.ConversationEntry, error) {
	if _, ok := s.store.GetContact(key); !ok {
		return nil, usecaseErrors.ErrContactNotFound
	}
	return s.store.ConversationHistory(key), nil
}

// Insights returns relationship insights and communication patterns for key
func (s *Service) Insights(key phone.Key) (*Insights, error) {
	ctx, err := s.Context(key)
	if err != nil {
		return nil, err
	}
	return &Insights{
		PhoneKey: key,
		Insights: ctx.Insights,
		Patterns: ctx.Patterns,
		Summary:  ctx.Summary,
	}, nil
}

// Brief generates a pre-call briefing for key
func (s *Service) Brief(key phone.Key) (*entities.Briefing, error) {
	ctx, err := s.Context(key)
	if err != nil {
		return nil, err
	}
	briefing := s.briefing.Brief(ctx)
	return &briefing, nil
}

// ListContacts returns every contact with its relationship recomputed as of now
func (s *Service) ListContacts() []entities.Contact {
	now := s.now()
	contacts := s.store.ListContacts()
	for i := range contacts {
		contacts[i].Reclassify(now)
	}
	return contacts
}

// SetActionItemCompleted flips the completion flag of one action item
func (s *Service) SetActionItemCompleted(key phone.Key, id string, completed bool) (*entities.ActionItem, error) {
	var updated entities.ActionItem
	_, err := s.store.UpdateContact(key, func(c *entities.Contact) error {
		for i := range c.ActionItems {
			if c.ActionItems[i].ID != id {
				continue
			}
			c.ActionItems[i].SetCompleted(completed, s.now())
			updated = c.ActionItems[i].Clone()
			return nil
		}
		return usecaseErrors.ErrActionItemNotFound
	})
	if errors.Is(err, repositories.ErrContactNotFound) {
		return nil, usecaseErrors.ErrContactNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
