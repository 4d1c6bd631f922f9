package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"chapak/internal/api"
	"chapak/internal/auth"
	"chapak/internal/config"
	"chapak/internal/domain"
	"chapak/internal/events"
	"chapak/internal/validation"
	"chapak/internal/worker"

	"github.com/rs/zerolog"
)

// Console is the interactive terminal front-end: the booking form and the
// check-in desk for the park's ticketing backend.
type Console struct {
	config       *config.Config
	client       *api.Client
	tokens       *auth.TokenStore
	stateService domain.StateManager
	exports      *worker.ExportWorker
	camera       validation.Camera
	eventBus     domain.EventPublisher
	logger       *zerolog.Logger

	in  *bufio.Scanner
	out io.Writer
}

func New(
	cfg *config.Config,
	client *api.Client,
	tokens *auth.TokenStore,
	stateService domain.StateManager,
	exports *worker.ExportWorker,
	camera validation.Camera,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
	in io.Reader,
	out io.Writer,
) *Console {
	if eventBus == nil {
		eventBus = events.NewEventBus()
	}
	if camera == nil {
		camera = validation.UnavailableCamera{}
	}
	return &Console{
		config:       cfg,
		client:       client,
		tokens:       tokens,
		stateService: stateService,
		exports:      exports,
		camera:       camera,
		eventBus:     eventBus,
		logger:       logger,
		in:           bufio.NewScanner(in),
		out:          out,
	}
}

// errQuit signals a clean exit requested from any prompt.
var errQuit = errors.New("quit")

// Run drives the session: login gate, then the main menu until quit or ctx
// cancellation.
func (c *Console) Run(ctx context.Context) error {
	if err := c.ensureLoggedIn(ctx); err != nil {
		if errors.Is(err, errQuit) {
			return nil
		}
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		c.printMenu()
		choice, err := c.readLine("> ")
		if err != nil {
			if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch strings.TrimSpace(choice) {
		case "1":
			c.runBooking(ctx)
		case "2":
			c.runValidation(ctx)
		case "3":
			c.showDashboard(ctx)
		case "4":
			c.lookupBooking(ctx)
		case "5":
			c.showOffers(ctx)
		case "6":
			c.runExport(ctx)
		case "7":
			c.logout()
			if err := c.ensureLoggedIn(ctx); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				return err
			}
		case "0":
			return nil
		case "":
		default:
			c.printf("Unknown option: %s\n", choice)
		}
	}
}

func (c *Console) printMenu() {
	user := c.tokens.User()
	operator := "anonymous"
	if user != nil {
		operator = user.Email
	}
	c.printf("\n=== Chapak Ticketing [%s] ===\n", operator)
	c.printf("1. New booking\n")
	c.printf("2. Ticket check-in\n")
	c.printf("3. Dashboard\n")
	c.printf("4. Booking lookup\n")
	c.printf("5. Offers & prices\n")
	c.printf("6. Export bookings\n")
	c.printf("7. Logout\n")
	c.printf("q. Quit\n")
}

// ensureLoggedIn prompts for credentials until the backend accepts them. A
// still-valid saved session passes through without prompting.
func (c *Console) ensureLoggedIn(ctx context.Context) error {
	if c.tokens.Token() != "" && !c.tokens.Expired() {
		if exp := c.tokens.ExpiresAt(); !exp.IsZero() && time.Until(exp) < time.Hour {
			c.printf("Warning: session expires at %s\n", exp.Format("15:04"))
		}
		return nil
	}
	if c.tokens.Expired() {
		c.printf("Saved session has expired, please log in again.\n")
		_ = c.tokens.Clear()
	}

	for {
		email, err := c.readLine("Email: ")
		if err != nil {
			return err
		}
		password, err := c.readLine("Password: ")
		if err != nil {
			return err
		}

		resp, err := c.client.Login(ctx, strings.TrimSpace(email), password)
		if err != nil {
			var domainErr *api.DomainError
			if errors.As(err, &domainErr) {
				c.printf("Login failed: %s\n", domainErr.Message)
			} else {
				c.printf("Login failed: backend unreachable\n")
				c.logger.Error().Err(err).Msg("login request failed")
			}
			continue
		}

		if err := c.tokens.Save(resp.Token, resp.User); err != nil {
			c.logger.Warn().Err(err).Msg("failed to persist session")
		}
		if resp.User != nil && resp.User.IsFirstLogin {
			c.printf("First login detected: please change your password in the admin panel.\n")
		}
		c.logger.Info().Str("email", strings.TrimSpace(email)).Msg("logged in")
		return nil
	}
}

func (c *Console) logout() {
	if err := c.tokens.Clear(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to clear session")
	}
	c.printf("Logged out.\n")
}

func (c *Console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

// readLine prints the prompt and reads one line. "q" on its own answers
// errQuit so every prompt doubles as an exit point.
func (c *Console) readLine(prompt string) (string, error) {
	c.printf("%s", prompt)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	line := c.in.Text()
	if strings.TrimSpace(line) == "q" {
		return "", errQuit
	}
	return line, nil
}
