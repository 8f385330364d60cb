// Package handlers contains the HTTP layer: request decoding, the calls
// into the workflow engine and repositories, and the legacy response
// shapes the frontend expects.
package handlers

import (
	"github.com/antoniovieira1/api-solicitacao-servico/directory"
	"github.com/antoniovieira1/api-solicitacao-servico/notify"
	"github.com/antoniovieira1/api-solicitacao-servico/views"
	"github.com/antoniovieira1/api-solicitacao-servico/workflow"
)

var (
	Directory  *directory.Client
	Dispatcher *notify.Dispatcher
	Assembler  *views.Assembler
	Engine     *workflow.Engine
)

// Init wires the handler package. Called once from main after the database
// and the external clients are up.
func Init(dir *directory.Client, dispatcher *notify.Dispatcher, assembler *views.Assembler, engine *workflow.Engine) {
	Directory = dir
	Dispatcher = dispatcher
	Assembler = assembler
	Engine = engine
}
