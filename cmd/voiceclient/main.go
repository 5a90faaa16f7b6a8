// Command voiceclient drives a running gateway by hand: it issues a user
// token, asks a text question, uploads a recording, and replays the IVR and
// WhatsApp webhooks.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/satriahrh/voicebridge/internal/auth"
)

type queryResponse struct {
	Query                 string  `json:"query"`
	Response              string  `json:"response"`
	Language              string  `json:"language"`
	AudioURL              *string `json:"audio_url"`
	UploadedInputAudioURL *string `json:"uploaded_input_audio_url"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "gateway base URL")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "JWT signing secret shared with the server")
	userID := flag.String("user", "voiceclient", "user ID to issue the token for")
	text := flag.String("text", "What is malaria?", "question for the text assistant")
	language := flag.String("language", "en", "language code: en, yo, ig or ha")
	category := flag.String("category", "health", "interaction category")
	audioPath := flag.String("audio", "", "recording to send to the voice upload route")
	recordingURL := flag.String("recording-url", "", "recording URL to replay through the IVR webhook")
	from := flag.String("from", "whatsapp:+2348000000000", "sender for the WhatsApp webhook replay")
	flag.Parse()

	if *secret == "" {
		log.Fatal("JWT secret is required: pass -secret or set JWT_SECRET")
	}

	token, err := auth.New(*secret, time.Hour).GenerateUserToken(*userID)
	if err != nil {
		log.Fatalf("Failed to generate user token: %v", err)
	}

	client := resty.New().
		SetBaseURL(*baseURL).
		SetTimeout(2 * time.Minute)

	// Test 1: health
	resp, err := client.R().Get("/health")
	if err != nil {
		log.Fatalf("Health check failed: %v", err)
	}
	fmt.Printf("✅ Health: %s\n", resp.String())

	// Test 2: text assistant
	var answer queryResponse
	var apiErr errorResponse
	resp, err = client.R().
		SetAuthToken(token).
		SetBody(map[string]string{"text": *text, "language": *language, "category": *category}).
		SetResult(&answer).
		SetError(&apiErr).
		Post("/api/assistant/query")
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	if resp.IsError() {
		log.Fatalf("Query rejected (%d): %s %s", resp.StatusCode(), apiErr.Error, apiErr.Message)
	}
	printAnswer("📥 Text", answer)

	// Test 3: voice upload
	if *audioPath != "" {
		data, err := os.ReadFile(*audioPath)
		if err != nil {
			log.Fatalf("Failed to read audio file: %v", err)
		}
		fmt.Printf("📁 Read audio file: %s (%d bytes)\n", *audioPath, len(data))

		answer = queryResponse{}
		resp, err = client.R().
			SetAuthToken(token).
			SetFileReader("file", filepath.Base(*audioPath), bytes.NewReader(data)).
			SetFormData(map[string]string{"language": *language, "category": *category}).
			SetResult(&answer).
			SetError(&apiErr).
			Post("/api/assistant/voice-upload")
		if err != nil {
			log.Fatalf("Voice upload failed: %v", err)
		}
		if resp.IsError() {
			log.Fatalf("Voice upload rejected (%d): %s %s", resp.StatusCode(), apiErr.Error, apiErr.Message)
		}
		printAnswer("📥 Voice", answer)
	}

	// Test 4: IVR webhook, first without a recording then with one
	resp, err = client.R().
		SetFormData(map[string]string{"CallSid": "CAvoiceclient"}).
		Post("/api/assistant/ivr-hook")
	if err != nil {
		log.Fatalf("IVR prompt failed: %v", err)
	}
	fmt.Printf("📞 IVR prompt: %s\n", resp.String())

	if *recordingURL != "" {
		resp, err = client.R().
			SetFormData(map[string]string{"CallSid": "CAvoiceclient", "RecordingUrl": *recordingURL}).
			Post("/api/assistant/ivr-hook")
		if err != nil {
			log.Fatalf("IVR turn failed: %v", err)
		}
		fmt.Printf("📞 IVR reply: %s\n", resp.String())
	}

	// Test 5: WhatsApp webhook with a text body
	resp, err = client.R().
		SetFormData(map[string]string{"From": *from, "Body": *text, "MessageSid": "SMvoiceclient"}).
		Post("/api/assistant/whatsapp-hook")
	if err != nil {
		log.Fatalf("WhatsApp webhook failed: %v", err)
	}
	fmt.Printf("💬 WhatsApp ack (%d): %s\n", resp.StatusCode(), resp.String())

	// Test 6: history
	resp, err = client.R().SetAuthToken(token).Get("/api/logs/query-history")
	if err != nil {
		log.Fatalf("History failed: %v", err)
	}
	fmt.Printf("📜 History: %s\n", resp.String())

	fmt.Println("🎉 All requests completed")
}

func printAnswer(label string, a queryResponse) {
	fmt.Printf("%s [%s] %q -> %q\n", label, a.Language, a.Query, a.Response)
	if a.AudioURL != nil {
		fmt.Printf("   🔊 %s\n", *a.AudioURL)
	}
	if a.UploadedInputAudioURL != nil {
		fmt.Printf("   🎙️ %s\n", *a.UploadedInputAudioURL)
	}
}
