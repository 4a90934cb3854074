package pe

// CurrentMachine is the machine value of this build.
const CurrentMachine uint16 = MachineAMD64
