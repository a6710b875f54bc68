package server

import (
	"net/http"
	"sync"

	"github.com/invopop/jsonschema"
)

type schemaEntry struct {
	typ   string
	desc  string
	value any
}

var inboundSchemas = []schemaEntry{
	{TypeHello, "Re-send the welcome message.", &HelloRequest{}},
	{TypeJoin, "Join a room by code, or create one when room_code is empty.", &JoinRequest{}},
	{TypeReady, "Toggle the ready flag in the lobby.", &ReadyRequest{}},
	{TypeInput, "Latest movement direction and interact state.", &InputRequest{}},
	{TypePing, "Place a labelled marker on the map.", &PingRequest{}},
	{TypeQuickChat, "Send a short preset chat line.", &QuickChatRequest{}},
	{TypeCodeSubmit, "Submit the escape code at the final gate.", &CodeSubmitRequest{}},
}

var outboundSchemas = []schemaEntry{
	{"welcome", "Sent on connect and in reply to hello.", &WelcomeMsg{}},
	{"joined", "Sent to the joining connection.", &JoinedMsg{}},
	{"event", "Roster change broadcast.", &EventMsg{}},
	{"error", "Request rejected.", &ErrorMsg{}},
	{"state", "Per-tick snapshot, tailored to the recipient's role.", &StateMsg{}},
}

// ProtocolSchema 由消息结构体反射生成的协议描述（入站与出站各为一组 oneOf）
var ProtocolSchema = sync.OnceValue(buildProtocolSchema)

func buildProtocolSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	reflectAll := func(entries []schemaEntry) []*jsonschema.Schema {
		out := make([]*jsonschema.Schema, 0, len(entries))
		for _, e := range entries {
			s := reflector.Reflect(e.value)
			s.Version = ""
			s.Title = e.typ
			s.Description = e.desc
			out = append(out, s)
		}
		return out
	}

	return &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "Temple Protocol",
		Description: "JSON messages exchanged over /ws. Every message carries a string \"type\" field.",
		OneOf: []*jsonschema.Schema{
			{
				Title:       "Inbound",
				Description: "Client to server.",
				OneOf:       reflectAll(inboundSchemas),
			},
			{
				Title:       "Outbound",
				Description: "Server to client.",
				OneOf:       reflectAll(outboundSchemas),
			},
		},
	}
}

// HandleSchema GET /protocol/schema
func HandleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ProtocolSchema())
}
