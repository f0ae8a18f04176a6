package a

func f(x int) {
	if x > 0 { // want `empty-if: if statement has an empty body`
	}
	switch x {
	case 1:
		println(x) // want `ban-calls: call to println is not allowed`
		break      // want `useless-break: useless break statement at the end of case clause`
	}
}

var n int = 3 // want `no-inferrable-types: type int is inferred from the initializer`

func g() {
	// plint-ignore: ban-calls
	panic("ignored")
}
