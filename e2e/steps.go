package e2e

import (
	"github.com/cucumber/godog"

	"stacksevents/e2e/steps/common"
	"stacksevents/e2e/steps/ticketing"
	"stacksevents/e2e/steps/wallet"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Generic requests and assertions
	common.RegisterSteps(ctx, tc)

	// Wallet session
	wallet.RegisterSteps(ctx, tc)

	// Events, purchases and transfers
	ticketing.RegisterSteps(ctx, tc)
}
