package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tom-bou/speech-schedulin-assistant/internal/agent"
	"github.com/tom-bou/speech-schedulin-assistant/internal/config"
	calendarservice "github.com/tom-bou/speech-schedulin-assistant/internal/service/calendar"
	chatservice "github.com/tom-bou/speech-schedulin-assistant/internal/service/chat"
	speechservice "github.com/tom-bou/speech-schedulin-assistant/internal/service/speech"
	"github.com/tom-bou/speech-schedulin-assistant/pkg/console"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if !cfg.AI.Enabled() {
		log.Fatal("model credentials not configured: set ARK_API_KEY and ARK_MODEL")
	}
	if !cfg.Calendar.Enabled() {
		log.Fatal("calendar OAuth not configured: set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")
	}

	// Each role gets its own model instance so the calendar tool
	// binding never leaks into the selector or the planner.
	selectorModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		log.Fatalf("failed to create selector model: %v", err)
	}
	planningModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		log.Fatalf("failed to create planning model: %v", err)
	}
	calendarModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		log.Fatalf("failed to create calendar model: %v", err)
	}

	// Calendar provider client; the consent flow may block here on the
	// first run until the user authorizes in the browser.
	credentials := calendarservice.NewCredentialManager(cfg.Calendar)
	httpClient, err := credentials.HTTPClient(ctx)
	if err != nil {
		log.Fatalf("failed to obtain calendar credentials: %v", err)
	}
	eventsAPI, err := calendarservice.NewGoogleEventsAPI(ctx, httpClient, cfg.Calendar.CalendarID)
	if err != nil {
		log.Fatalf("failed to create calendar service: %v", err)
	}
	calendarClient := calendarservice.NewClient(eventsAPI)

	tools, err := agent.NewCalendarTools(calendarClient)
	if err != nil {
		log.Fatalf("failed to build calendar tools: %v", err)
	}
	calendarAgent, err := agent.NewCalendarAgent(ctx, calendarModel, tools, time.Now)
	if err != nil {
		log.Fatalf("failed to create calendar agent: %v", err)
	}
	planningAgent := agent.NewPlanningAgent(planningModel, time.Now)
	userAgent := agent.NewUserAgent(nil)

	selector, err := agent.NewSelector(ctx, selectorModel)
	if err != nil {
		log.Fatalf("failed to create selector: %v", err)
	}

	store := chatservice.NewService()
	printer := console.NewPrinter()

	var opts []agent.ManagerOption
	if cfg.Speech.Enabled {
		opts = append(opts, agent.WithSpeech(speechservice.NewService(cfg.Speech), cfg.Speech.OutputDir))
		log.Println("speech service initialized successfully")
	} else {
		log.Println("speech credentials not configured, replies will be text only")
	}

	manager := agent.NewManager(selector, store, printer, cfg.Chat.MaxMessages, opts...)
	for _, p := range []agent.Participant{calendarAgent, planningAgent, userAgent} {
		if err := manager.Register(p); err != nil {
			log.Fatalf("failed to register %s: %v", p.Name(), err)
		}
	}

	printWelcome(printer)

	first, err := userAgent.Speak(ctx)
	if err != nil {
		log.Fatalf("failed to read first message: %v", err)
	}

	if err := manager.Run(ctx, first); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Println("session interrupted")
			return
		}
		log.Fatalf("session failed: %v", err)
	}
}

func printWelcome(printer *console.Printer) {
	printer.PrintNotice("")
	printer.PrintNotice("Welcome to the Scheduling Assistant!")
	printer.PrintNotice("You can interact with me using natural language.")
	printer.PrintNotice("Example commands:")
	printer.PrintNotice("- Schedule a meeting with John this week")
	printer.PrintNotice("- Check my calendar for next week")
	printer.PrintNotice("- Plan tomorrow's schedule")
	printer.PrintNotice("- Delete the team meeting on Friday")
	printer.PrintNotice("")
	printer.PrintNotice("Reply 'approve' when you are satisfied to conclude a task.")
	printer.PrintNotice("")
}
