/*
Package ompplaces binds sibling worker processes running OpenMP compute
kernels to disjoint sets of CPUs, so that they don't contend for the same
physical cores or NUMA nodes.

The CPUs available to a process are enumerated as a [Topology] of CPUs grouped
by physical core and NUMA node, restricted to the process's CPU affinity. A
[Strategy] then partitions the topology into [Place] objects:

  - [StrategyAll] yields a single place spanning all CPUs,
  - [StrategyCores] yields a place per physical core,
  - [StrategyNodes] yields a place per NUMA node.

Unless SMT is requested, places contain only the first CPU of each physical
core.

A [Manager] populates the process-wide [Pool] once, ordering places by
descending size, and leases each place to exactly one worker launch via [Run].
Instead of modifying the environment of this process, [Run] hands the launch
an [Overlay] with the OMP_PLACES, OMP_NUM_THREADS and OMP_PROC_BIND variables
to be merged into the worker's environment, for instance using
[Overlay.Apply] with an [os/exec.Cmd].

The VLLM_CPU_OMP_THREADS_BIND environment variable controls binding: when
unset, all CPUs of the process are used; “nobind” disables binding; otherwise,
it specifies one or more “|”-separated CPU masks, such as
“0-7,16-23|8-15,24-31”.

CPUs are represented either as a [List] of CPU ranges, such as “1-4,8”, or as
a [Set] of CPU bits, mirroring the representations used in sysfs and in the
sched_getaffinity(2) syscall.
*/
package ompplaces
