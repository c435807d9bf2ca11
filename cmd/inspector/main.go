package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Small operational CLI that dumps the reporting surface of a running
// node: health, share config, venue descriptors, retained dust, and
// optionally one account's balance and history.
func main() {
	baseURL := flag.String("url", "http://localhost:8080", "node base URL")
	apiKey := flag.String("key", "", "gateway API key")
	account := flag.String("account", "", "account ID to inspect (optional)")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}

	dump(client, *apiKey, *baseURL+"/health", "Health")
	dump(client, *apiKey, *baseURL+"/v1/shares", "Share Configuration")
	dump(client, *apiKey, *baseURL+"/v1/venues", "Venues")
	dump(client, *apiKey, *baseURL+"/v1/dust", "Retained Dust")

	if *account != "" {
		dump(client, *apiKey, *baseURL+"/v1/accounts/"+*account+"/balance", "Balance: "+*account)
		dump(client, *apiKey, *baseURL+"/v1/accounts/"+*account+"/records?limit=20", "Recent Records: "+*account)
	}
}

func dump(client *http.Client, apiKey, url, title string) {
	fmt.Printf("--- %s ---\n", title)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
		return
	}
	if apiKey != "" {
		req.Header.Set("X-Gateway-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read failed: %v\n", err)
		return
	}

	var pretty any
	if err := json.Unmarshal(body, &pretty); err != nil {
		fmt.Println(string(body))
		return
	}
	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Printf("%s (HTTP %d)\n\n", out, resp.StatusCode)
}
