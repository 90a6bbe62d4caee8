// Package models converts between normalized value trees and typed documents.
//
// Every document type embeds [Base] and implements [Document]: it names its
// wire type tag, declares its schema fragment, and moves its declared fields
// in and out of a [Fields] map. Fields the type does not declare survive a
// round trip in [Base.Extra].
//
//	type Note struct {
//		models.Base
//		Body string
//	}
//
//	func (*Note) TypeTag() string { return "Note" }
//
//	func (*Note) Schema() schema.Fragment {
//		return models.SchemaFor("Note", schema.Fragment{
//			"properties": map[string]any{"body": map[string]any{"type": "string"}},
//		})
//	}
//
//	func (n *Note) MarshalFields(f models.Fields) {
//		f.PutString("body", n.Body)
//	}
//
//	func (n *Note) UnmarshalFields(f models.Fields) (err error) {
//		n.Body, err = models.Take[string](f, "body")
//		return err
//	}
//
//	func init() {
//		registry.Default.Register(registry.EntryFor[Note]("Note"))
//	}
//
// Decoding never runs constructors: FromMap starts from the zero value of
// the registered type, so defaults applied by New* functions never override
// persisted values.
//
// A document may opt into more behavior by implementing [Validatable],
// [Preparer], [DeletionValidator], [PostLoader] or [Indexer].
package models
