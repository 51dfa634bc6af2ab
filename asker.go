package askgpt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/instinct/askgpt/internal/client"
	"github.com/instinct/askgpt/internal/subprocess"
)

// Asker answers chat questions by running one responder session per question.
//
// Calls are serialized: the responder listens on a fixed port, so two
// questions never run at the same time. An Asker is safe for concurrent use.
type Asker struct {
	log      *slog.Logger
	options  *Options
	launcher Launcher

	mu sync.Mutex // Serializes questions
}

// NewAsker creates an asker with the given options.
func NewAsker(opts ...Option) *Asker {
	options := applyOptions(opts).WithDefaults()
	log := loggerWithComponent(options, "asker")

	launcher := options.Launcher
	if launcher == nil {
		launcher = subprocess.NewLauncher(options.Logger, options)
	}

	return &Asker{
		log:      log,
		options:  options,
		launcher: launcher,
	}
}

// Ask runs the whole lifecycle for one question and returns the answer.
//
// It launches the responder, waits for it to accept a connection, sends the
// question with the inventory summary, reads the answer and sends the
// disconnect notice. The responder is then given the configured exit grace
// to terminate before it is killed.
func (a *Asker) Ask(ctx context.Context, question, inventory string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	proc, err := a.launcher.Launch(ctx, a.options.ScriptPath, a.options.LogPath)
	if err != nil {
		a.log.Error("Failed to launch responder", "error", err)

		return "", fmt.Errorf("launch responder: %w", err)
	}

	defer a.reap(proc)

	session := client.New(a.options)
	defer session.DisconnectAndClose()

	log := a.log.With("session_id", session.ID(), "pid", proc.Pid())

	if err := a.connect(ctx, session, proc); err != nil {
		log.Error("Responder did not accept the connection", "error", err)

		return "", fmt.Errorf("connect responder: %w", err)
	}

	if err := session.SendQuery(ctx, question, inventory); err != nil {
		log.Error("Failed to send question", "error", err)

		return "", fmt.Errorf("send question: %w", err)
	}

	answer, err := session.ReceiveResponse(ctx)
	if err != nil {
		log.Error("Failed to receive answer", "error", err)

		return "", fmt.Errorf("receive answer: %w", err)
	}

	log.Info("Question answered", "answer_len", len(answer))

	return answer, nil
}

// connect probes the responder until it accepts the connection. The probe
// stops early when the responder exits before listening.
func (a *Asker) connect(ctx context.Context, session *Session, proc Process) error {
	probeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-proc.Done():
			cancel()
		case <-probeCtx.Done():
		}
	}()

	err := session.ConnectWithRetry(probeCtx, client.PolicyFromOptions(a.options))
	if err != nil && ctx.Err() == nil && isDone(proc.Done()) {
		return fmt.Errorf("responder exited before accepting connections: %w", err)
	}

	return err
}

// reap waits up to the exit grace for the responder to exit on its own and
// kills it otherwise, so the port is free for the next question.
func (a *Asker) reap(proc Process) {
	if a.options.ExitGrace < 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.options.ExitGrace)
	defer cancel()

	err := proc.Wait(ctx)
	if err == nil {
		return
	}

	if ctx.Err() == nil {
		a.log.Warn("Responder exited with error", "pid", proc.Pid(), "error", err)

		return
	}

	a.log.Warn("Responder still running after disconnect, killing it",
		"pid", proc.Pid(), "grace", a.options.ExitGrace)

	if err := proc.Kill(); err != nil {
		a.log.Warn("Failed to kill responder", "pid", proc.Pid(), "error", err)

		return
	}

	// Reap so the process does not linger.
	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()

	_ = proc.Wait(waitCtx)
}

// HandleChat answers message if it is a question and reports whether it was.
//
// A question is a message whose first space-separated token is the trigger
// word. The rest of the message is asked with the player's inventory and the
// answer is shown to the player. Any failure is logged and the player gets
// the fallback reply instead.
func (a *Asker) HandleChat(ctx context.Context, player PlayerContext, message string) bool {
	question, ok := ParseTrigger(message, a.options.TriggerWord)
	if !ok {
		return false
	}

	answer, err := a.Ask(ctx, question, player.Inventory())
	if err != nil {
		a.log.Error("Question failed, sending fallback reply", "error", err)

		answer = a.options.FallbackReply
	}

	player.Reply(answer)

	return true
}

// ParseTrigger reports whether message starts with the trigger word and
// returns the question that follows it.
func ParseTrigger(message, trigger string) (string, bool) {
	first, rest, _ := strings.Cut(message, " ")
	if trigger == "" || first != trigger {
		return "", false
	}

	return strings.TrimSpace(rest), true
}

func isDone(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// Ask launches the responder, asks one question and returns the answer.
//
// This is a convenience wrapper around NewAsker for a single question.
func Ask(ctx context.Context, question, inventory string, opts ...Option) (string, error) {
	return NewAsker(opts...).Ask(ctx, question, inventory)
}
