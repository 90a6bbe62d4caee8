package models

import "github.com/sanskrit-coders/docmodel/pkg/registry"

// Entries lists the document types this package defines.
func Entries() []registry.Entry {
	return []registry.Entry{
		registry.EntryFor[Object](TagObject),
		registry.EntryFor[Target](TagTarget),
		registry.EntryFor[DataSource](TagDataSource),
		registry.EntryFor[ScriptRendering](TagScriptRendering),
		registry.EntryFor[Text](TagText),
		registry.EntryFor[NamedEntity](TagNamedEntity),
		registry.EntryFor[Annotation](TagAnnotation),
		registry.EntryFor[TextAnnotation](TagTextAnnotation),
		registry.EntryFor[Node](TagNode),
	}
}

func init() {
	registry.Default.OnCollision(func(name string) {
		log.Warn("type tag registered twice, the last registration wins", "tag", name)
	})
	registry.Default.Register(Entries()...)
}
