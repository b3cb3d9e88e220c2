package ticketing

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	Save(key, value string)
	Saved(key string) string
}

// RegisterSteps registers event, purchase and transfer step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ticketingSteps{tc: tc}

	ctx.Step(`^I note the remaining supply of "([^"]*)"$`, steps.noteRemaining)
	ctx.Step(`^I buy (\d+) tickets? for "([^"]*)"$`, steps.buy)
	ctx.Step(`^I save the first purchased ticket$`, steps.saveFirstTicket)
	ctx.Step(`^the remaining supply of "([^"]*)" should have dropped by (\d+)$`, steps.remainingDroppedBy)
	ctx.Step(`^I transfer the saved ticket to "([^"]*)"$`, steps.transferTo)
	ctx.Step(`^"([^"]*)" should hold the saved ticket$`, steps.shouldHoldSaved)
	ctx.Step(`^I should not hold the saved ticket$`, steps.iShouldNotHoldSaved)
	ctx.Step(`^the saved ticket should have (\d+) transfers? in its history$`, steps.historyLength)
}

type ticketingSteps struct {
	tc        TestContext
	remaining map[string]int
}

func (s *ticketingSteps) remainingOf(eventID string) (int, error) {
	if err := s.tc.GET("/events/"+url.PathEscape(eventID), nil); err != nil {
		return 0, err
	}
	v, err := s.tc.GetResponseField("remaining_supply")
	if err != nil {
		return 0, err
	}
	n, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("remaining_supply is not a number: %v", v)
	}
	return int(n), nil
}

func (s *ticketingSteps) noteRemaining(ctx context.Context, eventID string) error {
	n, err := s.remainingOf(eventID)
	if err != nil {
		return err
	}
	if s.remaining == nil {
		s.remaining = map[string]int{}
	}
	s.remaining[eventID] = n
	return nil
}

func (s *ticketingSteps) buy(ctx context.Context, quantity int, eventID string) error {
	return s.tc.POST("/events/"+url.PathEscape(eventID)+"/purchase", map[string]interface{}{
		"quantity": quantity,
	})
}

func (s *ticketingSteps) saveFirstTicket(ctx context.Context) error {
	id, err := s.tc.GetResponseField("tickets.0.id")
	if err != nil {
		return err
	}
	s.tc.Save("ticket", fmt.Sprint(id))
	return nil
}

func (s *ticketingSteps) remainingDroppedBy(ctx context.Context, eventID string, by int) error {
	before, ok := s.remaining[eventID]
	if !ok {
		return fmt.Errorf("remaining supply of %s was not noted", eventID)
	}
	after, err := s.remainingOf(eventID)
	if err != nil {
		return err
	}
	if before-after != by {
		return fmt.Errorf("expected %s to drop by %d, went from %d to %d", eventID, by, before, after)
	}
	return nil
}

func (s *ticketingSteps) transferTo(ctx context.Context, to string) error {
	return s.tc.POST("/tickets/"+url.PathEscape(s.tc.Saved("ticket"))+"/transfer", map[string]interface{}{
		"to": to,
	})
}

func (s *ticketingSteps) holds(addr string) (bool, error) {
	q := url.Values{"address": {addr}}
	if err := s.tc.GET("/tickets?"+q.Encode(), nil); err != nil {
		return false, err
	}
	tickets, err := s.tc.GetResponseField("tickets")
	if err != nil {
		return false, err
	}
	list, _ := tickets.([]interface{})
	want := s.tc.Saved("ticket")
	for _, t := range list {
		if m, ok := t.(map[string]interface{}); ok && m["id"] == want {
			return true, nil
		}
	}
	return false, nil
}

func (s *ticketingSteps) shouldHoldSaved(ctx context.Context, addr string) error {
	held, err := s.holds(addr)
	if err != nil {
		return err
	}
	if !held {
		return fmt.Errorf("%s does not hold ticket %s: %s", addr, s.tc.Saved("ticket"), s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *ticketingSteps) iShouldNotHoldSaved(ctx context.Context) error {
	held, err := s.holds(s.tc.Saved("address"))
	if err != nil {
		return err
	}
	if held {
		return fmt.Errorf("connected wallet still holds ticket %s", s.tc.Saved("ticket"))
	}
	return nil
}

func (s *ticketingSteps) historyLength(ctx context.Context, n int) error {
	if err := s.tc.GET("/tickets/"+url.PathEscape(s.tc.Saved("ticket"))+"/history", nil); err != nil {
		return err
	}
	transfers, err := s.tc.GetResponseField("transfers")
	if err != nil {
		return err
	}
	list, _ := transfers.([]interface{})
	if len(list) != n {
		return fmt.Errorf("expected %d transfers, got %d", n, len(list))
	}
	return nil
}
