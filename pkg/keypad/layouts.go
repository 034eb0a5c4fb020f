package keypad

import "github.com/stateforward/go-dfa"

var (
	button   = dfa.NewState[int]
	char     = dfa.NewState[rune]
	move     = dfa.Transition[int, rune]
	charMove = dfa.Transition[rune, rune]
)

// Square is the keypad
//
//	1 2 3
//	4 5 6
//	7 8 9
var Square = dfa.MustBuild(
	dfa.Cycle(dfa.Or(button(1), button(2), button(3)), up),
	dfa.Cycle(dfa.Or(button(1), button(4), button(7)), left),
	dfa.Cycle(dfa.Or(button(3), button(6), button(9)), right),
	dfa.Cycle(dfa.Or(button(7), button(8), button(9)), down),
	move(button(1), right, button(2)),
	move(button(1), down, button(4)),
	move(button(2), left, button(1)),
	move(button(2), right, button(3)),
	move(button(2), down, button(5)),
	move(button(3), left, button(2)),
	move(button(3), down, button(6)),
	move(button(4), up, button(1)),
	move(button(4), right, button(5)),
	move(button(4), down, button(7)),
	move(button(5), up, button(2)),
	move(button(5), left, button(4)),
	move(button(5), right, button(6)),
	move(button(5), down, button(8)),
	move(button(6), up, button(3)),
	move(button(6), left, button(5)),
	move(button(6), down, button(9)),
	move(button(7), up, button(4)),
	move(button(7), right, button(8)),
	move(button(8), up, button(5)),
	move(button(8), left, button(7)),
	move(button(8), right, button(9)),
	move(button(9), up, button(6)),
	move(button(9), left, button(8)),
)

// SquareStart is the button every Square decoding starts on.
var SquareStart = button(5)

// Diamond is the keypad
//
//	    1
//	  2 3 4
//	5 6 7 8 9
//	  A B C
//	    D
var Diamond = dfa.MustBuild(
	dfa.Cycle(dfa.Or(char('1'), char('2'), char('5'), char('A'), char('D')), left),
	dfa.Cycle(dfa.Or(char('1'), char('4'), char('9'), char('C'), char('D')), right),
	dfa.Cycle(dfa.Or(char('5'), char('2'), char('1'), char('4'), char('9')), up),
	dfa.Cycle(dfa.Or(char('5'), char('A'), char('D'), char('C'), char('9')), down),
	charMove(char('1'), down, char('3')),
	charMove(char('2'), down, char('6')),
	charMove(char('4'), down, char('8')),
	charMove(char('2'), right, char('3')),
	charMove(char('4'), left, char('3')),
	charMove(char('5'), right, char('6')),
	charMove(char('9'), left, char('8')),
	charMove(char('A'), up, char('6')),
	charMove(char('A'), right, char('B')),
	charMove(char('C'), up, char('8')),
	charMove(char('C'), left, char('B')),
	charMove(char('D'), up, char('B')),
	charMove(char('3'), up, char('1')),
	charMove(char('3'), left, char('2')),
	charMove(char('3'), right, char('4')),
	charMove(char('3'), down, char('7')),
	charMove(char('6'), up, char('2')),
	charMove(char('6'), left, char('5')),
	charMove(char('6'), right, char('7')),
	charMove(char('6'), down, char('A')),
	charMove(char('7'), up, char('3')),
	charMove(char('7'), left, char('6')),
	charMove(char('7'), right, char('8')),
	charMove(char('7'), down, char('B')),
	charMove(char('8'), up, char('4')),
	charMove(char('8'), left, char('7')),
	charMove(char('8'), right, char('9')),
	charMove(char('8'), down, char('C')),
	charMove(char('B'), up, char('7')),
	charMove(char('B'), left, char('A')),
	charMove(char('B'), right, char('C')),
	charMove(char('B'), down, char('D')),
)

// DiamondStart is the button every Diamond decoding starts on.
var DiamondStart = char('5')
