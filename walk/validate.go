package walk

import (
	"fern/common"
	"fern/depm"
	"fern/ir"
	"fern/report"
	"fern/util"
)

// validator implements the validation pass: file-scope and per-declaration
// structural rules.  All findings are issues on the file; validation never
// aborts analysis.
type validator struct {
	acc *fileAcc
	reg *depm.Registry
}

func (v *validator) validateFile() {
	for _, cls := range v.acc.classes {
		v.validateClass(cls)
	}

	for _, fn := range v.acc.functions {
		v.validateAbstractConstructions(fn)

		if fn.Visibility == common.VisPrivate && fn.Sym != nil && !fn.Sym.Used {
			v.acc.addIssue(report.Hintf(fn.Loc(), "private function `%s` is unused", fn.Name))
		}
	}
}

func (v *validator) validateClass(cls *ir.ClassDecl) {
	// A stateful widget is a pair: the widget class plus a companion state
	// class in the same file.
	if cls.WidgetKind == ir.WidgetStateful && v.stateClassFor(cls.Name) == nil {
		v.acc.addIssue(report.Errorf(
			cls.Loc(),
			"stateful widget `%s` has no companion state class in this file",
			cls.Name,
		))
	}

	// Widgets render through a build method.
	if cls.WidgetKind == ir.WidgetStateless || cls.WidgetKind == ir.WidgetState {
		if !cls.Abstract && cls.Method("build") == nil {
			v.acc.addIssue(report.Errorf(
				cls.Loc(),
				"widget class `%s` does not declare a `build` method",
				cls.Name,
			))
		}
	}

	for _, method := range cls.Methods {
		v.validateMethod(cls, method)
	}

	for _, field := range cls.Fields {
		if field.Visibility == common.VisPrivate && field.Sym != nil && !field.Sym.Used {
			v.acc.addIssue(report.Hintf(field.Loc(), "private field `%s` is unused", field.Name))
		}
	}
}

func (v *validator) validateMethod(cls *ir.ClassDecl, method *ir.FuncDecl) {
	if method.Abstract {
		if method.Body != nil {
			v.acc.addIssue(report.Errorf(
				method.Loc(),
				"abstract method `%s.%s` must not have a body",
				cls.Name, method.Name,
			))
		}

		if !cls.Abstract {
			v.acc.addIssue(report.Warnf(
				method.Loc(),
				"abstract method `%s.%s` declared in non-abstract class",
				cls.Name, method.Name,
			))
		}
	} else if method.Body == nil {
		v.acc.addIssue(report.Errorf(
			method.Loc(),
			"method `%s.%s` is missing a body",
			cls.Name, method.Name,
		))
	}

	v.validateAbstractConstructions(method)
}

// stateClassFor finds the companion state class of a stateful widget by the
// naming convention `<Widget>State`, optionally privately prefixed.
func (v *validator) stateClassFor(widgetName string) *ir.ClassDecl {
	for _, cls := range v.acc.classes {
		if cls.WidgetKind != ir.WidgetState {
			continue
		}

		if util.Contains([]string{widgetName + "State", "_" + widgetName + "State"}, cls.Name) {
			return cls
		}
	}

	return nil
}

// validateAbstractConstructions flags constructor invocations of abstract
// classes.  Every construction in a body is cached as a widget usage, so the
// check reads the usage trees instead of re-walking the IR.
func (v *validator) validateAbstractConstructions(fn *ir.FuncDecl) {
	if fn.Body == nil {
		return
	}

	v.checkUsages(fn.Body.Usages())
}

func (v *validator) checkUsages(usages []*ir.WidgetUsage) {
	for _, u := range usages {
		if cd, ok := v.reg.LookupClass(u.Widget); ok && cd.Abstract {
			v.acc.addIssue(report.Errorf(u.Loc, "cannot construct abstract class `%s`", u.Widget))
		}

		v.checkUsages(u.Children)
	}
}
