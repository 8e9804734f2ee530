package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"bobox/internal/unit"
	"bobox/pkg/client"
	"bobox/pkg/config"
)

// devflow walks a fresh unit through a guest stay against a running API:
// check-in, a rejected early release, cleaning, and release.
func main() {
	var (
		apiURL = flag.String("api-url", "", "unit API base URL (defaults to http://localhost<HTTP_ADDR>)")
		name   = flag.String("name", fmt.Sprintf("Devflow-%d", time.Now().Unix()), "name of the unit to create")
		kind   = flag.String("type", string(unit.KindCapsule), "unit type: capsule or cabin")
	)
	flag.Parse()

	cfg := config.Load()
	if *apiURL == "" {
		*apiURL = defaultAPIURL(cfg.HTTPAddr)
	}

	k, err := unit.ParseKind(*kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	c := client.New(*apiURL)

	u, err := c.Create(ctx, *name, k)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create unit: %v\n", err)
		fmt.Fprintf(os.Stderr, "tip: is the API running, and is HTTP_ADDR set correctly? api_url=%s\n", *apiURL)
		os.Exit(1)
	}
	fmt.Printf("created id=%s name=%s status=%s\n", u.ID, u.Name, u.Status)

	steps := []struct {
		target     unit.Status
		wantReject bool
	}{
		{target: unit.StatusOccupied},
		{target: unit.StatusAvailable, wantReject: true},
		{target: unit.StatusCleaningInProgress},
		{target: unit.StatusAvailable},
	}
	for _, st := range steps {
		next, err := c.UpdateStatus(ctx, u.ID, st.target)
		var apiErr *client.APIError
		switch {
		case st.wantReject && errors.As(err, &apiErr) && apiErr.Code == "INVALID_STATE_TRANSITION":
			fmt.Printf("  %s -> %s rejected: %s\n", u.Status, st.target, apiErr.Message)
		case err != nil:
			fmt.Fprintf(os.Stderr, "  %s -> %s failed: %v\n", u.Status, st.target, err)
			os.Exit(1)
		case st.wantReject:
			fmt.Fprintf(os.Stderr, "  %s -> %s was accepted but must be rejected\n", u.Status, st.target)
			os.Exit(1)
		default:
			fmt.Printf("  %s -> %s ok (lastUpdated=%s)\n", u.Status, next.Status, next.LastUpdated.Format(time.RFC3339Nano))
			u = next
		}
	}

	fmt.Printf("\nDone. Inspect with:\n")
	fmt.Printf("  GET %s/api/units/%s\n", strings.TrimRight(*apiURL, "/"), u.ID)
}

func defaultAPIURL(httpAddr string) string {
	// httpAddr is typically ":3001" or "0.0.0.0:3001".
	addr := strings.TrimSpace(httpAddr)
	if addr == "" {
		return client.DefaultBaseURL
	}
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	if strings.HasPrefix(addr, "0.0.0.0:") {
		return "http://localhost" + strings.TrimPrefix(addr, "0.0.0.0")
	}
	return "http://" + addr
}
