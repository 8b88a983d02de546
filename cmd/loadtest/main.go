package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

var URL, _ = os.LookupEnv("API_URL")
var PORT, _ = os.LookupEnv("API_PORT")
var userID = envOr("TEST_USER_ID", "f60ae2e1-ee72-4a6a-bef2-7cde5c83782f")

var baseURL = fmt.Sprintf("http://%s:%s/api/v1", URL, PORT)
var transactionsURL = fmt.Sprintf("%s/users/%s/transactions", baseURL, userID)
var balanceURL = fmt.Sprintf("%s/users/%s/balance", baseURL, userID)

const (
	workers  = 10
	duration = 30 * time.Second
)

type createRequest struct {
	Amount    float64 `json:"amount"`
	Type      string  `json:"type"`
	PaymentID string  `json:"paymentId"`
}

type settleRequest struct {
	Status    string `json:"status"`
	ReceiptID string `json:"receiptId"`
}

type createResponse struct {
	ID string `json:"id"`
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func createAndSettle(client *http.Client) error {
	txType := "deposit"
	if rand.Intn(2) == 0 {
		txType = "withdrawal"
	}

	body, _ := json.Marshal(createRequest{
		Amount:    float64(rand.Intn(9900)+100) / 100,
		Type:      txType,
		PaymentID: uuid.New().String(),
	})

	resp, err := client.Post(transactionsURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var created createResponse
	if err = json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return err
	}
	if created.ID == "" {
		return fmt.Errorf("create failed with status %d", resp.StatusCode)
	}

	status := "completed"
	if rand.Intn(10) == 0 {
		status = "failed"
	}
	settleBody, _ := json.Marshal(settleRequest{
		Status:    status,
		ReceiptID: uuid.New().String(),
	})

	settleURL := fmt.Sprintf("%s/transactions/%s/settlement", baseURL, created.ID)
	settleResp, err := client.Post(settleURL, "application/json", bytes.NewReader(settleBody))
	if err != nil {
		return err
	}
	settleResp.Body.Close()

	return nil
}

func readBack(client *http.Client) {
	for _, url := range []string{balanceURL, transactionsURL} {
		resp, err := client.Get(url)
		if err != nil {
			continue
		}
		resp.Body.Close()
	}
}

func main() {
	rand.Seed(time.Now().UnixNano())
	client := &http.Client{Timeout: 10 * time.Second}
	deadline := time.Now().Add(duration)

	var wg sync.WaitGroup
	var mu sync.Mutex
	requests, failures := 0, 0

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for time.Now().Before(deadline) {
				err := createAndSettle(client)
				readBack(client)

				mu.Lock()
				requests++
				if err != nil {
					failures++
				}
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	fmt.Printf("requests: %d, failures: %d\n", requests, failures)
}
