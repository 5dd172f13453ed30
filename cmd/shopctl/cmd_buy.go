package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/fjod/deisishop/internal/checkout"
	"github.com/fjod/deisishop/internal/events"
)

type buyCmd struct {
	env *env
}

func newBuyCmd(e *env) (command, error) {
	return &buyCmd{env: e}, nil
}

func (c *buyCmd) run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("buy", flag.ContinueOnError)
	student := fs.Bool("student", false, "apply the student discount")
	coupon := fs.String("coupon", "", "discount `coupon`")
	name := fs.String("name", "", "buyer `name`")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := c.env.cartStore(ctx)
	if err != nil {
		return err
	}
	if store.IsEmpty() {
		fmt.Fprintln(c.env.out, "Your cart is empty, nothing to buy.")
		return nil
	}

	publisher := events.New(c.env.cfg.OrdersTopic, c.env.cfg.KafkaBrokers, c.env.log)
	defer publisher.Close()

	submitter := checkout.NewSubmitter(session, c.env.catalogClient(), store, publisher, c.env.log)
	result, err := submitter.Buy(ctx, checkout.Options{
		Student: *student,
		Coupon:  *coupon,
		Name:    *name,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(c.env.out, "Purchase complete.")
	fmt.Fprintln(c.env.out, string(result))
	return nil
}
