// Package askgpt bridges in-game chat questions to a local language model
// responder.
//
// A question is a chat message that starts with the trigger word (askGPT by
// default). For each question the bridge launches the responder process,
// connects to it over a local TCP socket, sends the question together with an
// inventory summary as one newline-delimited JSON frame, reads one response
// frame, and tears the session down with an explicit disconnect notice.
//
// # Basic Usage
//
// For a single question, use the Ask function:
//
//	answer, err := askgpt.Ask(ctx, "How do I craft a torch?", "Player's inventory: coal:3,stick:2,",
//	    askgpt.WithScriptPath("PythonScripts/server.py"),
//	    askgpt.WithInterpreter("python"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(answer)
//
// # Chat Integration
//
// Game code hands every chat message to an Asker together with a
// PlayerContext. Messages without the trigger word are ignored; failures
// reach the player as the fallback reply:
//
//	asker := askgpt.NewAsker(
//	    askgpt.WithScriptPath("PythonScripts/server.py"),
//	    askgpt.WithInterpreter("python"),
//	)
//
//	if asker.HandleChat(ctx, player, message) {
//	    // the message was a question and the player got a reply
//	}
//
// # Sessions
//
// For direct control over one connection to an already running responder,
// use NewSession or the WithSession helper:
//
//	err := askgpt.WithSession(ctx, func(s *askgpt.Session) error {
//	    if err := s.SendQuery(ctx, "2+2?", "Empty Inventory"); err != nil {
//	        return err
//	    }
//
//	    answer, err := s.ReceiveResponse(ctx)
//	    if err != nil {
//	        return err
//	    }
//
//	    fmt.Println(answer)
//
//	    return nil
//	}, askgpt.WithPort(8080))
//
// # Error Handling
//
// The package provides typed errors for the failure points of a question:
//
//	answer, err := askgpt.Ask(ctx, question, inventory, opts...)
//	if err != nil {
//	    var launchErr *askgpt.LaunchError
//	    if errors.As(err, &launchErr) {
//	        log.Fatal("Responder not found:", launchErr.SearchedPaths)
//	    }
//
//	    if errors.Is(err, askgpt.ErrResponderNotReady) {
//	        log.Fatal("Responder never started listening")
//	    }
//	}
package askgpt
