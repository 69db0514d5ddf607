package main

import (
	"flag"
	"fmt"
	"net/http"
	"time"
)

// Usage example on the command line:
// > go run main.go -url http://localhost:8080/health -timeout 2m
func main() {
	url := flag.String("url", "http://localhost:8080/health", "the health endpoint to poll")
	timeout := flag.Duration("timeout", 0, "give up after this long; 0 waits forever")
	flag.Parse()

	start := time.Now()
	totalWaitTime := 0
	for {
		res, err := http.Get(*url)
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				fmt.Println(res.Status)
				break
			} else {
				fmt.Println(res.Status)
			}
		} else {
			fmt.Println(err)
		}
		if *timeout > 0 && time.Since(start) > *timeout {
			panic(fmt.Sprintf("%s not available after %s", *url, *timeout))
		}
		totalWaitTime += 5
		fmt.Printf("Waiting %d seconds", totalWaitTime)
		fmt.Println()
		time.Sleep(5 * time.Second)
	}
}
