package ast

import "github.com/cursive-lang/cursive0/internal/lexer"

// AttachDocs assigns each line-doc to the first item whose start offset
// is ≥ the doc's end, and collects module-docs into the file's top
// doc list (spec.md §4.1). Attachment is decoupled from parsing: the
// parser hands back a flat item list and this pass walks it once.
// Docs on ErrorItems are discarded.
func AttachDocs(f *File, docs []lexer.DocComment) {
	var moduleDocs []Doc
	lineDocs := make([]lexer.DocComment, 0, len(docs))
	for _, d := range docs {
		if d.Kind == lexer.DocModule {
			moduleDocs = append(moduleDocs, Doc{Text: d.Text, Sp: d.Span})
		} else {
			lineDocs = append(lineDocs, d)
		}
	}
	f.ModuleDoc = append(f.ModuleDoc, moduleDocs...)

	di := 0
	for _, item := range f.Items {
		start := item.Span().Start.Offset
		if _, isErr := item.(*ErrorItem); isErr {
			for di < len(lineDocs) && lineDocs[di].Span.End.Offset <= start {
				di++
			}
			continue
		}
		var attached []Doc
		for di < len(lineDocs) && lineDocs[di].Span.End.Offset <= start {
			attached = append(attached, Doc{Text: lineDocs[di].Text, Sp: lineDocs[di].Span})
			di++
		}
		if len(attached) > 0 {
			setDocs(item, attached)
		}
	}
}

// setDocs assigns attached to whichever Docs field the item exposes.
func setDocs(item Item, docs []Doc) {
	switch it := item.(type) {
	case *StaticItem:
		it.Docs = docs
	case *ProcedureItem:
		it.Docs = docs
	case *RecordItem:
		it.Docs = docs
	case *EnumItem:
		it.Docs = docs
	case *ModalItem:
		it.Docs = docs
	case *ClassItem:
		it.Docs = docs
	case *TypeAliasItem:
		it.Docs = docs
	}
}
