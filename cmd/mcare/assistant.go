package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atinylittleshell/memorycare/internal/assistant"
	"github.com/atinylittleshell/memorycare/internal/render"
	"go.uber.org/zap"
)

func (a *app) systemInstruction() string {
	if a.cfg.Assistant.SystemPrompt != "" {
		return a.cfg.Assistant.SystemPrompt
	}
	return assistant.DefaultChatInstruction
}

func (a *app) runAsk(ctx context.Context, args []string) error {
	client, err := a.requireAssistant()
	if err != nil {
		return err
	}
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return errors.New("usage: ask <question>")
	}

	var answer string
	err = a.thinking(ctx, func(ctx context.Context) (err error) {
		answer, err = client.GenerateText(ctx, question, a.systemInstruction())
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, answer)
	return nil
}

// runChat reads one message per line and streams each reply. A failed turn
// is reported and the conversation continues.
func (a *app) runChat(ctx context.Context, args []string) error {
	client, err := a.requireAssistant()
	if err != nil {
		return err
	}
	chat := client.Chat(a.systemInstruction())
	interactive := a.isTerminal()
	if interactive {
		a.out.Notify(render.Info, "Chatting with %s. Type exit to leave.", client.Model())
	}

	scanner := bufio.NewScanner(a.stdin)
	for {
		if interactive {
			fmt.Fprint(a.stdout, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		message := strings.TrimSpace(scanner.Text())
		switch message {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		_, err := chat.Stream(ctx, message, func(chunk string) {
			fmt.Fprint(a.out, chunk)
		})
		fmt.Fprintln(a.out)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			a.logger.Warn("chat turn failed", zap.Error(err))
			a.out.Notify(render.Error, "The assistant did not answer: %v", err)
		}
	}
}
