package billing

import (
	"fmt"
	"math/rand"
)

// Processor is a payment gateway strategy.
type Processor interface {
	// Process attempts to charge the amount, returning an error on decline.
	Process(amount float64) error
	// Name identifies the gateway in logs and receipts.
	Name() string
}

// CreditCardProcessor simulates a credit card gateway.
type CreditCardProcessor struct {
	roll func() float64
}

// NewCreditCardProcessor returns a processor with a 90% simulated
// approval rate.
func NewCreditCardProcessor() *CreditCardProcessor {
	return &CreditCardProcessor{roll: rand.Float64}
}

func (p *CreditCardProcessor) Process(amount float64) error {
	if p.roll() < 0.9 {
		return nil
	}
	return fmt.Errorf("credit card declined for %.2f", amount)
}

func (p *CreditCardProcessor) Name() string { return "credit_card" }

// UPIProcessor simulates a UPI gateway.
type UPIProcessor struct {
	roll func() float64
}

// NewUPIProcessor returns a processor with a 95% simulated approval rate.
func NewUPIProcessor() *UPIProcessor {
	return &UPIProcessor{roll: rand.Float64}
}

func (p *UPIProcessor) Process(amount float64) error {
	if p.roll() < 0.95 {
		return nil
	}
	return fmt.Errorf("UPI transfer failed for %.2f", amount)
}

func (p *UPIProcessor) Name() string { return "upi" }

// NewProcessor builds a processor by configured name.
func NewProcessor(name string) (Processor, error) {
	switch name {
	case "credit_card":
		return NewCreditCardProcessor(), nil
	case "upi":
		return NewUPIProcessor(), nil
	default:
		return nil, fmt.Errorf("unknown payment processor %q", name)
	}
}
