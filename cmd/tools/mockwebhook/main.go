package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
)

// Posts a synthetic Stripe event to a local server, signed with the real
// signature scheme so the endpoint's verification path is exercised.
func main() {
	url := flag.String("url", "http://localhost:3001/stripe-webhook", "Webhook URL")
	secret := flag.String("secret", os.Getenv("STRIPE_ENDPOINT_SECRET"), "Webhook signing secret")
	eventID := flag.String("event-id", "evt_mock_1", "Event ID")
	eventType := flag.String("type", "payment_intent.succeeded", "Event type")
	intentID := flag.String("intent-id", "pi_mock_1", "Payment intent ID")
	amount := flag.Int64("amount", 2500, "Amount in minor units")
	currency := flag.String("currency", "usd", "Currency")
	charityID := flag.String("charity-id", "1", "charity_id metadata value")
	frequency := flag.String("frequency", "one-time", "donation_frequency metadata value")
	dryRun := flag.Bool("dry-run", false, "Only print signature header, don't send")

	flag.Parse()

	if *secret == "" {
		fmt.Fprintf(os.Stderr, "Error: secret not provided and STRIPE_ENDPOINT_SECRET not set\n")
		os.Exit(1)
	}

	now := time.Now()

	object := map[string]any{
		"id":       *intentID,
		"object":   "payment_intent",
		"amount":   *amount,
		"currency": *currency,
		"status":   "succeeded",
		"created":  now.Unix(),
		"metadata": map[string]string{
			"charity_id":         *charityID,
			"donation_frequency": *frequency,
		},
	}
	event := map[string]any{
		"id":     *eventID,
		"object": "event",
		"type":   *eventType,
		// ConstructEvent rejects events whose API version differs from the SDK's
		"api_version": stripe.APIVersion,
		"created":     now.Unix(),
		"data":        map[string]any{"object": object},
	}

	body, err := json.Marshal(event)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling payload: %v\n", err)
		os.Exit(1)
	}

	sig := hex.EncodeToString(webhook.ComputeSignature(now, body, *secret))
	sigHeader := fmt.Sprintf("t=%d,v1=%s", now.Unix(), sig)

	fmt.Printf("Stripe-Signature: %s\n", sigHeader)
	fmt.Printf("Body: %s\n", string(body))

	if *dryRun {
		fmt.Println("\n[DRY RUN] Not sending request")
		return
	}

	fmt.Printf("\nSending to %s...\n", *url)
	req, err := http.NewRequest("POST", *url, bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", sigHeader)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	fmt.Printf("Response: %d %s\n", res.StatusCode, string(respBody))
}
