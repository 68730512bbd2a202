package lspserver

// Stand-ins for protocol.Method* constants.
var methodInitialize, methodDidOpen string

const applyAllFixesCommand = "sentinel.applyAllFixes"

func handle(method string) {
	switch method {
	case "initialize": // want `use protocol.Method\* constant instead of string literal "initialize" for LSP method name`
		return
	case "shutdown": // want `use protocol.Method\* constant instead of string literal "shutdown" for LSP method name`
		return
	case "exit": // want `use protocol.Method\* constant instead of string literal "exit" for LSP method name`
		return
	case "textDocument/didOpen": // want `use protocol.Method\* constant instead of string literal "textDocument/didOpen" for LSP method name`
		return
	case "textDocument/formatting": // want `use protocol.Method\* constant instead of string literal "textDocument/formatting" for LSP method name`
		return
	case "workspace/executeCommand": // want `use protocol.Method\* constant instead of string literal "workspace/executeCommand" for LSP method name`
		return
	case "$/cancelRequest": // want `use protocol.Method\* constant instead of string literal "\$/cancelRequest" for LSP method name`
		return

	case methodInitialize, methodDidOpen:
		return

	case "something/else":
		return
	}

	_ = "hello world"
	_ = "sentinel"
	_ = "sentinel. not a command"

	_ = "textDocument/didSave" // want `use protocol.Method\* constant instead of string literal "textDocument/didSave" for LSP method name`
}

func execute(command string) bool {
	if command == applyAllFixesCommand {
		return true
	}
	return command == "sentinel.fixFile" // want `declare command ID "sentinel.fixFile" as a constant`
}
