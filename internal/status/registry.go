// Package status holds the fixed project pipeline.
package status

const (
	Received          = "Recebido"
	CreatingSite      = "Criando site"
	ConfiguringDomain = "Configurando Domínio"
	AwaitingDNS       = "Aguardando DNS"
	SiteReady         = "Site pronto"

	// InCustomization is set by customization requests. It is not part of
	// the pipeline and renders with the fallback color.
	InCustomization = "Em Customização"
)

// FallbackColor is used for any status outside the pipeline.
const FallbackColor = "gray"

type Entry struct {
	Value string `json:"value"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

var pipeline = []Entry{
	{Value: Received, Color: "blue", Icon: "inbox"},
	{Value: CreatingSite, Color: "yellow", Icon: "code"},
	{Value: ConfiguringDomain, Color: "purple", Icon: "globe"},
	{Value: AwaitingDNS, Color: "orange", Icon: "clock"},
	{Value: SiteReady, Color: "green", Icon: "check-circle"},
}

// All returns the pipeline in order. The slice is a copy.
func All() []Entry {
	out := make([]Entry, len(pipeline))
	copy(out, pipeline)
	return out
}

// Values returns the pipeline status strings in order.
func Values() []string {
	out := make([]string, len(pipeline))
	for i, e := range pipeline {
		out[i] = e.Value
	}
	return out
}

func IsPipeline(value string) bool {
	for _, e := range pipeline {
		if e.Value == value {
			return true
		}
	}
	return false
}

// Lookup never fails: unknown values come back as-is with FallbackColor.
func Lookup(value string) Entry {
	for _, e := range pipeline {
		if e.Value == value {
			return e
		}
	}
	return Entry{Value: value, Color: FallbackColor, Icon: "circle"}
}

// Default is the status every new project starts in.
func Default() string {
	return Received
}
