// Package compiler implements a compiler for a small Java subset: a lexer,
// a recursive-descent parser, a three-pass semantic analyzer, a
// three-address (quadruple) IR generator and an x86-style code generator,
// plus an LLVM IR backend for the entry method.
//
// Pipeline: source → Lex → Parse → Analyze → GenerateIR → CodeGen → assembly text
package compiler
