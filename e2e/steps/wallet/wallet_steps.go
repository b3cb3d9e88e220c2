package wallet

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	Save(key, value string)
}

// RegisterSteps registers wallet session step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &walletSteps{tc: tc}

	ctx.Step(`^I connect my wallet$`, steps.connect)
	ctx.Step(`^I connect with no wallet provider installed$`, steps.connectWithoutProvider)
	ctx.Step(`^I disconnect my wallet$`, steps.disconnect)
	ctx.Step(`^my wallet should be "([^"]*)"$`, steps.walletShouldBe)
}

type walletSteps struct {
	tc TestContext
}

func (s *walletSteps) connect(ctx context.Context) error {
	// Report the Hiro extension so an earlier provider-less scenario does
	// not leak into this one.
	body := map[string]interface{}{"injected_globals": []string{"StacksProvider"}}
	if err := s.tc.POST("/wallet/connect", body); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("connect returned %d", status)
	}
	addr, err := s.tc.GetResponseField("address")
	if err != nil {
		return err
	}
	s.tc.Save("address", fmt.Sprint(addr))
	return nil
}

func (s *walletSteps) connectWithoutProvider(ctx context.Context) error {
	return s.tc.POST("/wallet/connect", map[string]interface{}{
		"injected_globals": []string{},
	})
}

func (s *walletSteps) disconnect(ctx context.Context) error {
	return s.tc.POST("/wallet/disconnect", nil)
}

func (s *walletSteps) walletShouldBe(ctx context.Context, status string) error {
	if err := s.tc.GET("/wallet", nil); err != nil {
		return err
	}
	got, err := s.tc.GetResponseField("status")
	if err != nil {
		return err
	}
	if got != status {
		return fmt.Errorf("expected wallet %q, got %q", status, got)
	}
	return nil
}
