// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

// Augment precedes every instance of capability M with an instance of
// capability N derived from it, then re-sends the original. Both
// capabilities stay on the stack; the re-sent instance is spliced into the
// output and is not augmented again. The emitted N-instance's result is
// discarded.
func Augment[M any, N any, R, A any](e Comp[R, A], m MemberInOut[M, R], out MemberIn[N, R], f func(M) N) Comp[R, A] {
	return InterceptTranslate(e, m, TranslatorFunc[M, R](func(op M) Comp[R, Erased] {
		emit := &impureComp[R, Erased]{union: out.Inject(f(op))}
		resend := &impureComp[R, Erased]{union: m.Inject(op)}
		return Then[R, Erased, Erased](emit, resend)
	}))
}

// Write records an observation derived from every instance of capability M
// through a log-like capability N, leaving the instances themselves to their
// eventual interpreter. It is Augment under a name that states the intent.
func Write[M any, N any, R, A any](e Comp[R, A], m MemberInOut[M, R], log MemberIn[N, R], note func(M) N) Comp[R, A] {
	return Augment(e, m, log, note)
}
