package main

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gosuda/stargate/command"
	"github.com/gosuda/stargate/config"
	sgruntime "github.com/gosuda/stargate/runtime"
)

type appConfig struct {
	cfg    *config.Config
	proc   *command.Process
	logger *slog.Logger
}

type workerRequest struct {
	src      string
	complete bool
}

type workerStartedMsg struct {
	requests chan<- workerRequest
	events   <-chan tea.Msg
}

type evalOutputMsg struct {
	out sgruntime.Output
}

type evalDoneMsg struct {
	reply reply
}

type completionMsg struct {
	line       string
	candidates []string
}

type workerStoppedMsg struct{}
