/*
Package purplex is a parser-generator toolbox.

purplex creates canonical LR(1) parsers at runtime, without a code-generation
step: clients declare grammar productions together with semantic actions,
have parser tables compiled once, and then fold token streams into semantic
values. Package structure is as follows:

■ lr: Package lr implements the grammar model, the canonical LR(1) automaton
construction and the ACTION/GOTO table compiler.

■ lr/clr: Package clr implements the table-driven shift-reduce-accept
runtime, invoking semantic actions on reductions.

■ lr/scanner: Package scanner defines the tokenizer collaborator interface
and a lexmachine-backed default implementation.

The base package contains data types which are used throughout all the other
packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package purplex
