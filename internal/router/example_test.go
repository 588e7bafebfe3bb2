package router

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/patric-chuzhbe/voicetodo/internal/auth"
	"github.com/patric-chuzhbe/voicetodo/internal/ipchecker"
	"github.com/patric-chuzhbe/voicetodo/internal/logger"
	"github.com/patric-chuzhbe/voicetodo/internal/memorystorage"
	"github.com/patric-chuzhbe/voicetodo/internal/service"
	"github.com/patric-chuzhbe/voicetodo/internal/user"
)

func setupExampleServer() *httptest.Server {
	if err := logger.Init("error"); err != nil {
		panic(err)
	}

	theStorage, err := memorystorage.New()
	if err != nil {
		panic(err)
	}

	_, err = theStorage.CreateUser(
		context.Background(),
		&user.User{Username: "admin", Password: "admin123"},
	)
	if err != nil {
		panic(err)
	}

	theAuth := auth.New(theStorage, "sessionId", memorystorage.DefaultSessionTTL, false)

	checker, err := ipchecker.New("")
	if err != nil {
		panic(err)
	}

	return httptest.NewServer(New(service.New(theStorage), theAuth, checker))
}

func ExampleRouter_GetPing() {
	server := setupExampleServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/ping")
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	fmt.Println("Status Code:", resp.StatusCode)

	// Output:
	// Status Code: 200
}

func ExampleRouter_PostApiauthlogin() {
	server := setupExampleServer()
	defer server.Close()

	body := bytes.NewBufferString(`{"username":"admin","password":"admin123"}`)
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", body)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	gotSessionCookie := false
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "sessionId" && cookie.Value != "" {
			gotSessionCookie = true
		}
	}

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Println("Session cookie set:", gotSessionCookie)

	// Output:
	// Status Code: 200
	// Session cookie set: true
}

func ExampleRouter_GetApitasks() {
	server := setupExampleServer()
	defer server.Close()

	// Without a session cookie the task routes reject the request.
	resp, err := http.Get(server.URL + "/api/tasks")
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	fmt.Println("Status Code:", resp.StatusCode)

	// Output:
	// Status Code: 401
}
