package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"robojobs/watch"
)

func main() {
	_ = godotenv.Load()

	serverURL := flag.String("url", "http://localhost:8080", "Robojobs server URL")
	flag.Parse()

	program := tea.NewProgram(watch.NewModel(*serverURL))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
