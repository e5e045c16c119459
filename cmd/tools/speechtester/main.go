package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/tom-bou/speech-schedulin-assistant/internal/config"
	speechservice "github.com/tom-bou/speech-schedulin-assistant/internal/service/speech"
)

// Manual smoke tool for the speech provider: transcribe a file or
// synthesize a line of text without starting a conversation.
func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env, using system environment variables: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if !cfg.Speech.Enabled {
		log.Fatal("speech service not enabled: set SPEECH_BASE_URL and SPEECH_API_KEY")
	}

	mode := flag.String("mode", "", "test mode: asr or tts")
	audioPath := flag.String("audio", "", "ASR input audio file path")
	text := flag.String("text", "", "TTS input text")
	outputPath := flag.String("out", "", "TTS output audio file path")
	timeout := flag.Duration("timeout", 45*time.Second, "request timeout")
	flag.Parse()

	svc := speechservice.NewService(cfg.Speech)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *mode {
	case "asr":
		if *audioPath == "" {
			log.Fatal("-audio is required in asr mode")
		}
		audio, err := os.ReadFile(*audioPath)
		if err != nil {
			log.Fatalf("failed to read audio file: %v", err)
		}
		transcript, err := svc.Transcribe(ctx, audio, filepath.Base(*audioPath))
		if err != nil {
			log.Fatalf("transcription failed: %v", err)
		}
		log.Printf("transcript: %s", transcript)
	case "tts":
		if *text == "" {
			log.Fatal("-text is required in tts mode")
		}
		audio, err := svc.Synthesize(ctx, *text)
		if err != nil {
			log.Fatalf("synthesis failed: %v", err)
		}
		out := *outputPath
		if out == "" {
			out = "speech-test.mp3"
		}
		if err := os.WriteFile(out, audio, 0o644); err != nil {
			log.Fatalf("failed to write %s: %v", out, err)
		}
		log.Printf("wrote %d bytes to %s", len(audio), out)
	default:
		flag.Usage()
		log.Fatal("specify -mode=asr or -mode=tts")
	}
}
